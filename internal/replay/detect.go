package replay

import (
	"os"
	"path/filepath"
)

// resolvePath joins a node's repository-relative source path against the
// replayer's repo root, leaving absolute paths (e.g. in single-file test
// fixtures) untouched.
func resolvePath(repoRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// detectConflicts implements spec.md §4.7 step 1: any file whose mtime is
// after the graph's build timestamp is a conflict. stat failures are
// reported as errors, not conflicts, distinguishing "can't tell" from
// "changed since build".
func detectConflicts(paths []string, buildTimestamp int64) (conflicts, statErrors []string) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			statErrors = append(statErrors, p+": "+err.Error())
			continue
		}
		if info.ModTime().Unix() > buildTimestamp {
			conflicts = append(conflicts, p)
		}
	}
	return conflicts, statErrors
}

// atomicWrite writes content to path via a temp file + rename, per
// spec.md §5's "writes each file atomically" requirement, grounded on
// _examples/vjache-cie/pkg/ingestion/manifest.go's save path.
func atomicWrite(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
