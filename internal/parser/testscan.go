package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/elspais/internal/idconfig"
)

// TestScanConfig declares which files the TestScanner treats as test
// files: a set of directory prefixes (relative to the repository root)
// and a set of filename globs evaluated against the base name.
type TestScanConfig struct {
	Dirs  []string
	Globs []string
}

// DefaultTestScanConfig matches the conventional test locations and
// naming schemes across the pack's languages.
func DefaultTestScanConfig() TestScanConfig {
	return TestScanConfig{
		Dirs:  []string{"test", "tests", "spec", "specs", "__tests__"},
		Globs: []string{"test_*.py", "*_test.go", "*.test.js", "*.test.ts", "*_spec.rb", "*Test.java"},
	}
}

// Matches reports whether relPath should be treated as a test file.
func (c TestScanConfig) Matches(relPath string) bool {
	base := filepath.Base(relPath)
	dir := filepath.ToSlash(filepath.Dir(relPath))
	for _, d := range c.Dirs {
		if dir == d || strings.HasPrefix(dir, d+"/") || strings.Contains("/"+dir+"/", "/"+d+"/") {
			return true
		}
	}
	for _, g := range c.Globs {
		if ok, _ := filepath.Match(g, base); ok {
			return true
		}
	}
	return false
}

// TestScanner emits TEST ParsedContent records linking test functions to
// the requirement/assertion IDs they validate (spec.md §4.2.5), grounded
// on original_source/src/elspais/graph/parsers/test_scan.py's
// validates-target collection and expected-broken-links marker.
type TestScanner struct {
	pattern *idconfig.PatternConfig
	refcfg  *idconfig.ReferenceConfig

	validatesRe  *regexp.Regexp
	legacyRe     *regexp.Regexp
	standaloneRe *regexp.Regexp
	funcNameRe   *regexp.Regexp
	headerRe     *regexp.Regexp
}

// NewTestScanner builds a TestScanner bound to pattern and refcfg.
func NewTestScanner(pattern *idconfig.PatternConfig, refcfg *idconfig.ReferenceConfig) *TestScanner {
	idAlt := idAlternationExported(pattern)
	return &TestScanner{
		pattern:      pattern,
		refcfg:       refcfg,
		validatesRe:  regexp.MustCompile(`(?i)\bValidates\s*[:\s]\s*(` + idAlt + `(?:\s*,\s*` + idAlt + `)*)`),
		legacyRe:     regexp.MustCompile(`(?i)\bIMPLEMENTS\s*[:\s]\s*(` + idAlt + `(?:\s*,\s*` + idAlt + `)*)`),
		standaloneRe: regexp.MustCompile(idAlt),
		funcNameRe:   regexp.MustCompile(`(?i)\btest_([A-Za-z0-9_-]+?)_[A-Za-z0-9_]+\b|\bdef\s+test_([A-Za-z0-9_]+)\b|\bfunc\s+(Test[A-Za-z0-9_]+)\b`),
		headerRe:     idconfig.BuildTestHeaderRegex(),
	}
}

// idAlternationExported rebuilds the ID alternation pattern locally since
// idconfig's version is unexported; the shape matches
// idconfig.PatternConfig's compiled id regexp exactly.
func idAlternationExported(pattern *idconfig.PatternConfig) string {
	var codes []string
	for _, t := range pattern.Types {
		codes = append(codes, regexp.QuoteMeta(t.Code))
	}
	numeric := `\d+`
	if pattern.NumericWidth > 0 {
		numeric = `\d{` + itoa(pattern.NumericWidth) + `}`
	}
	return regexp.QuoteMeta(pattern.Prefix) + `-(?:` + strings.Join(codes, "|") + `)` + numeric + `(?:-[` + pattern.AssertionLabels + `]+)?`
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// TestRecord is one scanned test function with its validates-target and
// expected-broken-target lists.
type TestRecord struct {
	NodeID                 string
	RelPath                string
	TestName               string
	StartLine              int
	EndLine                int
	ValidatesTargets       []string
	ExpectedBrokenTargets  []string
}

// Scan scans one test file's lines, returning one TestRecord per
// recognized test function. Functions are delimited heuristically: a
// line matching funcNameRe opens a new record, which accumulates
// reference matches until the next test-function line or end of file.
func (s *TestScanner) Scan(relPath string, lines []Line) []TestRecord {
	expectedBrokenBudget := s.headerBudget(lines)

	var out []TestRecord
	var cur *TestRecord
	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for _, l := range lines {
		if m := s.funcNameRe.FindStringSubmatch(l.Text); m != nil {
			flush()
			name := firstNonEmpty(m[1], m[2], m[3])
			cur = &TestRecord{
				NodeID:    "TEST:" + relPath + ":" + name,
				RelPath:   relPath,
				TestName:  name,
				StartLine: l.Number,
				EndLine:   l.Number,
			}
		}
		if cur == nil {
			continue
		}
		cur.EndLine = l.Number
		ids := s.collectIDs(l.Text)
		for _, id := range ids {
			if expectedBrokenBudget > 0 {
				cur.ExpectedBrokenTargets = append(cur.ExpectedBrokenTargets, id)
				expectedBrokenBudget--
			} else {
				cur.ValidatesTargets = append(cur.ValidatesTargets, id)
			}
		}
	}
	flush()
	return out
}

// headerBudget reports the N from an "expected-broken-links N" marker
// found within the first 20 lines, or 0 if absent.
func (s *TestScanner) headerBudget(lines []Line) int {
	limit := 20
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		if m := s.headerRe.FindStringSubmatch(lines[i].Text); m != nil {
			return atoi(m[1])
		}
	}
	return 0
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return n
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func (s *TestScanner) collectIDs(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(list []string) {
		for _, id := range list {
			id = strings.TrimSpace(id)
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if m := s.validatesRe.FindStringSubmatch(text); m != nil {
		add(splitAndTrim(m[1]))
	}
	if s.refcfg.LegacyImplements {
		if m := s.legacyRe.FindStringSubmatch(text); m != nil {
			add(splitAndTrim(m[1]))
		}
	}
	for _, m := range s.standaloneRe.FindAllString(text, -1) {
		add([]string{m})
	}
	return ids
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
