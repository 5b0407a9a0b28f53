package parser

import (
	"regexp"
	"strings"

	"github.com/kraklabs/elspais/internal/idconfig"
)

// RequirementParser recognizes the requirement block grammar of
// spec.md §4.2.1, grounded on
// _examples/original_source/src/elspais/core/parser.py's block grammar.
type RequirementParser struct {
	pattern *idconfig.PatternConfig

	headingRe  *regexp.Regexp
	metaRe     *regexp.Regexp
	endRe      *regexp.Regexp
	assertHdrRe *regexp.Regexp
	labelRe    *regexp.Regexp
	standaloneRe map[string]*regexp.Regexp
}

// NewRequirementParser builds a RequirementParser bound to pattern.
func NewRequirementParser(pattern *idconfig.PatternConfig) *RequirementParser {
	p := &RequirementParser{pattern: pattern}
	// Heading: one or more '#', whitespace, a valid ID, ':', title.
	p.headingRe = regexp.MustCompile(`^#+\s+(\S+):\s*(.*)$`)
	// Metadata line: **Level**: X | **Status**: Y | **Implements**: a, b
	p.metaRe = regexp.MustCompile(`(?i)\*\*(Level|Status|Implements|Refines|Addresses)\*\*\s*:\s*([^|]*)`)
	p.standaloneRe = map[string]*regexp.Regexp{
		"Status":     regexp.MustCompile(`(?i)^\s*\*\*Status\*\*\s*:\s*(.+)$`),
		"Implements": regexp.MustCompile(`(?i)^\s*\*\*Implements\*\*\s*:\s*(.+)$`),
		"Refines":    regexp.MustCompile(`(?i)^\s*\*\*Refines\*\*\s*:\s*(.+)$`),
		"Addresses":  regexp.MustCompile(`(?i)^\s*\*\*Addresses\*\*\s*:\s*(.+)$`),
	}
	p.endRe = regexp.MustCompile(`^\*End\*\s*\*(.*)\*\s*(?:\|\s*\*\*Hash\*\*\s*:\s*(\S+))?\s*$`)
	p.assertHdrRe = regexp.MustCompile(`^##\s+Assertions\s*$`)
	p.labelRe = regexp.MustCompile(`^([A-Z0-9]+)\.\s(.*)$`)
	return p
}

// Parse scans lines for requirement blocks, returning one ParsedContent
// per block with its assertions nested in Data["assertions"].
func (p *RequirementParser) Parse(lines []Line) []ParsedContent {
	var out []ParsedContent
	i := 0
	for i < len(lines) {
		m := p.headingRe.FindStringSubmatch(lines[i].Text)
		if m == nil || !p.pattern.IsValid(m[1]) {
			i++
			continue
		}
		content, next := p.parseBlock(lines, i, m[1], m[2])
		out = append(out, content)
		i = next
	}
	return out
}

func (p *RequirementParser) parseBlock(lines []Line, start int, id, title string) (ParsedContent, int) {
	data := map[string]any{
		"id":    id,
		"title": strings.TrimSpace(title),
	}
	i := start + 1

	// Metadata line: first non-blank line after the heading.
	for i < len(lines) && strings.TrimSpace(lines[i].Text) == "" {
		i++
	}
	if i < len(lines) {
		p.parseMetadataLine(lines[i].Text, data)
		i++
	}

	// Standalone Status/Implements/Refines/Addresses lines may follow
	// the metadata line instead of being embedded in it.
	for i < len(lines) {
		if p.tryStandalone(lines[i].Text, data) {
			i++
			continue
		}
		break
	}

	bodyStart := i
	bodyEndExclusive := -1
	assertionsStart := -1
	endLineIdx := -1
	var hash string
	var endTitle string

	for i < len(lines) {
		text := lines[i].Text
		if p.assertHdrRe.MatchString(strings.TrimSpace(text)) && assertionsStart < 0 {
			assertionsStart = i
		}
		if m := p.endRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			endTitle = m[1]
			hash = m[2]
			endLineIdx = i
			bodyEndExclusive = i
			i++
			// Optional trailing "---" separator.
			if i < len(lines) && strings.TrimSpace(lines[i].Text) == "---" {
				i++
			}
			break
		}
		// Unterminated block recovery: the next valid requirement
		// header ends this block heuristically.
		if m := p.headingRe.FindStringSubmatch(text); m != nil && p.pattern.IsValid(m[1]) {
			bodyEndExclusive = i
			break
		}
		i++
	}
	if bodyEndExclusive < 0 {
		bodyEndExclusive = len(lines)
	}

	var bodyLines []Line
	var assertionLines []Line
	if assertionsStart >= 0 {
		bodyLines = lines[bodyStart:assertionsStart]
		assertionLines = lines[assertionsStart:bodyEndExclusive]
	} else {
		bodyLines = lines[bodyStart:bodyEndExclusive]
	}

	bodyText := joinTrimTrailingBlank(bodyLines)
	data["body_text"] = bodyText
	if hash != "" {
		data["hash"] = hash
	}
	if endTitle != "" {
		data["end_title"] = endTitle
	}
	data["assertions"] = p.parseAssertions(assertionLines)

	endLine := bodyEndExclusive
	if endLineIdx >= 0 {
		endLine = endLineIdx
	}
	rawStart := start
	rawEnd := bodyEndExclusive
	raw := joinRaw(lines[rawStart:min(rawEnd+1, len(lines))])

	content := ParsedContent{
		Type:      ContentRequirement,
		StartLine: lines[start].Number,
		EndLine:   lines[min(endLine, len(lines)-1)].Number,
		RawText:   raw,
		Data:      data,
	}
	return content, i
}

func (p *RequirementParser) parseMetadataLine(line string, data map[string]any) {
	matches := p.metaRe.FindAllStringSubmatch(line, -1)
	for _, m := range matches {
		val := strings.TrimSpace(m[2])
		switch strings.ToLower(m[1]) {
		case "level":
			data["level"] = val
		case "status":
			data["status"] = val
		case "implements":
			data["implements"] = splitRefs(val)
		case "refines":
			data["refines"] = splitRefs(val)
		case "addresses":
			data["addresses"] = splitRefs(val)
		}
	}
}

func (p *RequirementParser) tryStandalone(line string, data map[string]any) bool {
	for key, re := range p.standaloneRe {
		if m := re.FindStringSubmatch(line); m != nil {
			val := strings.TrimSpace(m[1])
			switch key {
			case "Status":
				data["status"] = val
			case "Implements":
				data["implements"] = splitRefs(val)
			case "Refines":
				data["refines"] = splitRefs(val)
			case "Addresses":
				data["addresses"] = splitRefs(val)
			}
			return true
		}
	}
	return false
}

// splitRefs splits a comma-separated reference list, dropping "no
// reference" sentinels (-, none, null, N/A, x, X).
func splitRefs(val string) []string {
	if idconfig.IsNoReferenceSentinel(val) {
		return nil
	}
	parts := strings.Split(val, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || idconfig.IsNoReferenceSentinel(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// parseAssertions parses the "## Assertions" section body (including its
// header line) into AssertionData records, per spec.md §4.2.1.
func (p *RequirementParser) parseAssertions(lines []Line) []AssertionData {
	var out []AssertionData
	i := 0
	// Skip the "## Assertions" header itself.
	if i < len(lines) && p.assertHdrRe.MatchString(strings.TrimSpace(lines[i].Text)) {
		i++
	}
	for i < len(lines) {
		text := lines[i].Text
		if strings.TrimSpace(text) == "" {
			i++
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(text), "#") {
			i++
			continue
		}
		m := p.labelRe.FindStringSubmatch(text)
		if m == nil {
			i++
			continue
		}
		label := m[1]
		var textLines []string
		textLines = append(textLines, m[2])
		startLine := lines[i].Number
		endLine := startLine
		i++
		for i < len(lines) {
			next := lines[i].Text
			if strings.TrimSpace(next) == "" {
				break
			}
			if !isContinuation(next) {
				break
			}
			if p.labelRe.MatchString(next) {
				break
			}
			textLines = append(textLines, strings.TrimSpace(next))
			endLine = lines[i].Number
			i++
		}
		assertionText := strings.Join(textLines, " ")
		assertionText = strings.TrimSpace(assertionText)
		out = append(out, AssertionData{
			Label:         label,
			Text:          assertionText,
			StartLine:     startLine,
			EndLine:       endLine,
			IsPlaceholder: IsPlaceholderText(assertionText),
		})
	}
	return out
}

// isContinuation reports whether line is an indented continuation line:
// it starts with whitespace followed by a non-whitespace character.
func isContinuation(line string) bool {
	if line == "" {
		return false
	}
	if line[0] != ' ' && line[0] != '\t' {
		return false
	}
	trimmed := strings.TrimLeft(line, " \t")
	return trimmed != ""
}

func joinTrimTrailingBlank(lines []Line) string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1].Text) == "" {
		end--
	}
	var b strings.Builder
	for i := 0; i < end; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(lines[i].Text)
	}
	return b.String()
}

func joinRaw(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}
