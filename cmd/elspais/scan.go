package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/elspais/internal/builder"
	"github.com/kraklabs/elspais/internal/cliutil"
	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/idconfig"
)

// skipDirs mirrors the teacher's watch.go skip-dir set: directories that
// are never worth scanning for either spec text or source references.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "bin": true, ".elspais": true,
}

func shouldSkipDir(base string) bool {
	return skipDirs[base] || (strings.HasPrefix(base, ".") && base != ".")
}

// walkFiles returns every non-skipped regular file path under root,
// relative to root, grounded on cmd/cie/watch.go's filepath.Walk +
// SkipDir skip-list pattern (minus the fsnotify watch itself, which is
// out of scope here).
func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		base := filepath.Base(path)
		if info.IsDir() {
			if path != root && shouldSkipDir(base) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

// buildGraph scans root's files and builds a graph from them, using cfg
// loaded from globals.Config. No clock is installed, so the resulting
// Graph.BuildTimestamp is the builder's default wall-clock time.
func buildGraph(root string, globals GlobalFlags) (*graph.Graph, *idconfig.PatternConfig, *idconfig.EngineConfig, error) {
	pattern, err := idconfig.LoadPatternConfig(globals.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	refcfg, err := idconfig.LoadReferenceConfig(globals.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	engineCfg, err := idconfig.LoadEngineConfig(globals.Config)
	if err != nil {
		return nil, nil, nil, err
	}

	relPaths, err := walkFiles(root)
	if err != nil {
		return nil, nil, nil, err
	}

	bar := cliutil.NewScanBar(len(relPaths), globals.Quiet)
	scanner := builder.NewFileScanner(pattern, refcfg, engineCfg)
	files := make([]builder.FileContent, 0, len(relPaths))
	for _, rel := range relPaths {
		content, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		files = append(files, scanner.Scan(rel, content))
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	b := builder.New(pattern, engineCfg, newLogger(globals))
	g := b.Build(files)
	return g, pattern, engineCfg, nil
}
