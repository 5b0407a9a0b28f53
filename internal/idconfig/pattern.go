// Package idconfig declares the ID shape, type-code table, assertion-label
// alphabet, and reference-comment grammar that the parsers and builder use
// to recognize requirement, assertion, and journey identifiers.
package idconfig

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TypeCode describes one requirement type recognized by the pattern:
// a short code letter, a display name, and a hierarchy level used for
// default root/leaf classification.
type TypeCode struct {
	Code  string // single letter or short code, e.g. "p", "o", "d"
	Name  string // display name, e.g. "Product", "Operational", "Development"
	Level int    // hierarchy level, lower is higher in the tree (0 = top)
}

// PatternConfig declares the prefix, type-code table, and numeric width
// used to validate and parse requirement IDs. It is immutable once built.
type PatternConfig struct {
	Prefix          string // e.g. "REQ"
	JourneyPrefix   string // e.g. "JNY"
	Types           []TypeCode
	NumericWidth    int  // fixed width, 0 means variable width
	AssertionLabels string // alphabet regex class, e.g. "A-Z0-9"

	idRegexp    *regexp.Regexp
	jnyRegexp   *regexp.Regexp
	typeByCode  map[string]TypeCode
}

// DefaultPatternConfig returns the REQ-<type><NNNNN>[-<label>] shape used
// across the example specs and tests when no TOML override is supplied.
func DefaultPatternConfig() *PatternConfig {
	cfg := &PatternConfig{
		Prefix:        "REQ",
		JourneyPrefix: "JNY",
		Types: []TypeCode{
			{Code: "p", Name: "Product", Level: 0},
			{Code: "o", Name: "Operational", Level: 1},
			{Code: "d", Name: "Development", Level: 2},
		},
		NumericWidth:    5,
		AssertionLabels: "A-Z0-9",
	}
	cfg.compile()
	return cfg
}

// NewPatternConfig builds and validates a PatternConfig from explicit
// fields, compiling its regexes. Used when loading from TOML.
func NewPatternConfig(prefix, journeyPrefix string, types []TypeCode, numericWidth int, assertionLabels string) (*PatternConfig, error) {
	if prefix == "" {
		return nil, fmt.Errorf("idconfig: prefix must not be empty")
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("idconfig: at least one type code is required")
	}
	if assertionLabels == "" {
		assertionLabels = "A-Z0-9"
	}
	cfg := &PatternConfig{
		Prefix:          prefix,
		JourneyPrefix:   journeyPrefix,
		Types:           types,
		NumericWidth:    numericWidth,
		AssertionLabels: assertionLabels,
	}
	cfg.compile()
	return cfg, nil
}

func (c *PatternConfig) compile() {
	c.typeByCode = make(map[string]TypeCode, len(c.Types))
	var codes []string
	for _, t := range c.Types {
		c.typeByCode[t.Code] = t
		codes = append(codes, regexp.QuoteMeta(t.Code))
	}
	numeric := `\d+`
	if c.NumericWidth > 0 {
		numeric = fmt.Sprintf(`\d{%d}`, c.NumericWidth)
	}
	// REQ-p00001 or REQ-p00001-A
	idPat := fmt.Sprintf(`^%s-(%s)(%s)(?:-([%s]+))?$`,
		regexp.QuoteMeta(c.Prefix), strings.Join(codes, "|"), numeric, c.AssertionLabels)
	c.idRegexp = regexp.MustCompile(idPat)

	if c.JourneyPrefix != "" {
		jnyPat := fmt.Sprintf(`^%s-([A-Za-z][A-Za-z0-9_-]*)-(\d+)$`, regexp.QuoteMeta(c.JourneyPrefix))
		c.jnyRegexp = regexp.MustCompile(jnyPat)
	}
}

// ParsedID is the decomposition of a well-formed requirement or assertion ID.
type ParsedID struct {
	TypeCode        string
	NumericPart     string
	AssertionLabel  string // empty if this ID names a requirement, not an assertion
}

// IsValid reports whether id is a well-formed requirement or assertion ID
// under this pattern.
func (c *PatternConfig) IsValid(id string) bool {
	return c.idRegexp.MatchString(id)
}

// IsValidJourney reports whether id is a well-formed user-journey ID.
func (c *PatternConfig) IsValidJourney(id string) bool {
	if c.jnyRegexp == nil {
		return false
	}
	return c.jnyRegexp.MatchString(id)
}

// ParseID decomposes a well-formed ID into its type code, numeric part,
// and optional assertion label. Returns an error if id does not match
// the configured pattern.
func (c *PatternConfig) ParseID(id string) (ParsedID, error) {
	m := c.idRegexp.FindStringSubmatch(id)
	if m == nil {
		return ParsedID{}, fmt.Errorf("idconfig: %q is not a valid id under prefix %q", id, c.Prefix)
	}
	return ParsedID{TypeCode: m[1], NumericPart: m[2], AssertionLabel: m[3]}, nil
}

// TypeByCode looks up the TypeCode by its short code letter.
func (c *PatternConfig) TypeByCode(code string) (TypeCode, bool) {
	t, ok := c.typeByCode[code]
	return t, ok
}

// RequirementID returns the base requirement id for any id, stripping a
// trailing assertion label if present.
func (c *PatternConfig) RequirementID(id string) string {
	p, err := c.ParseID(id)
	if err != nil {
		return id
	}
	if p.AssertionLabel == "" {
		return id
	}
	return strings.TrimSuffix(id, "-"+p.AssertionLabel)
}

// AssertionID composes a requirement id and a label into the compositional
// assertion id `<requirement_id>-<label>`, per spec.md §9 "Assertion IDs".
func (c *PatternConfig) AssertionID(requirementID, label string) string {
	return requirementID + "-" + label
}

// NextLabel returns the alphabetic successor of label under the
// configured assertion-label alphabet (A, B, C, ... Z, AA, ...). Only
// meaningful for the default "A-Z0-9" alphabet's letter run; callers that
// configure a different alphabet should supply their own sequence and are
// not required to use this helper.
func NextLabel(label string) string {
	if label == "" {
		return "A"
	}
	runes := []rune(label)
	i := len(runes) - 1
	for i >= 0 {
		if runes[i] != 'Z' {
			runes[i]++
			return string(runes)
		}
		runes[i] = 'A'
		i--
	}
	return "A" + string(runes)
}

// LabelLess reports whether a sorts before b in the monotone alphabetic
// sequence A, B, ..., Z, AA, AB, ... required by invariant I3. Shorter
// labels always sort before longer ones; equal-length labels compare
// lexicographically.
func LabelLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// parseNumericPart returns the integer value of a numeric id part, used
// by callers that need to sort or allocate new ids.
func parseNumericPart(s string) (int, error) {
	return strconv.Atoi(s)
}
