package builder

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/elspais/internal/idconfig"
	"github.com/kraklabs/elspais/internal/parser"
)

// FileScanner wires the C2 parsers together per file, turning raw file
// bytes into a FileContent ready for Builder.Build. Markdown files run
// the requirement/journey/file-structure parsers; everything else runs
// the code parser, and files under the configured test locations also
// run the test scanner.
type FileScanner struct {
	reqParser  *parser.RequirementParser
	jnyParser  *parser.JourneyParser
	fsParser   *parser.FileStructureParser
	codeParser *parser.CodeParser
	testScan   *parser.TestScanner
	testCfg    parser.TestScanConfig
}

// NewFileScanner builds a FileScanner bound to pattern and refcfg, using
// engine's test-scan locations.
func NewFileScanner(pattern *idconfig.PatternConfig, refcfg *idconfig.ReferenceConfig, engine *idconfig.EngineConfig) *FileScanner {
	testCfg := parser.DefaultTestScanConfig()
	if len(engine.TestDirs) > 0 {
		testCfg.Dirs = engine.TestDirs
	}
	if len(engine.TestFileGlobs) > 0 {
		testCfg.Globs = engine.TestFileGlobs
	}
	return &FileScanner{
		reqParser:  parser.NewRequirementParser(pattern),
		jnyParser:  parser.NewJourneyParser(pattern),
		fsParser:   parser.NewFileStructureParser(),
		codeParser: parser.NewCodeParser(pattern, refcfg),
		testScan:   parser.NewTestScanner(pattern, refcfg),
		testCfg:    testCfg,
	}
}

// Scan turns one file's path and raw content into a FileContent.
func (s *FileScanner) Scan(relPath string, content []byte) FileContent {
	lines := parser.SplitLines(string(content))
	fc := FileContent{Path: relPath, Lines: lines}

	if isMarkdown(relPath) {
		fc.Requirements = s.reqParser.Parse(lines)
		fc.Journeys = s.jnyParser.Parse(lines)
		fc.Regions = s.fsParser.Parse(lines, fc.Requirements)
		return fc
	}

	fc.IsSource = true
	fc.CodeRefs = s.codeParser.Parse(relPath, content, lines)
	if s.testCfg.Matches(relPath) {
		records := s.testScan.Scan(relPath, lines)
		fc.Tests = records
	}
	return fc
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
