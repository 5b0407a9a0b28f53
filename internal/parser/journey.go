package parser

import (
	"regexp"
	"strings"

	"github.com/kraklabs/elspais/internal/idconfig"
)

// JourneyParser recognizes user-journey blocks in the same files and with
// the same traversal as RequirementParser (spec.md §4.2.2). A journey ID
// is JNY-<descriptor>-<number>; journeys are roots by schema
// (graph.IsSchemaRoot).
type JourneyParser struct {
	pattern *idconfig.PatternConfig

	headingRe *regexp.Regexp
	fieldRe   *regexp.Regexp
	stepRe    *regexp.Regexp
	endRe     *regexp.Regexp
}

// NewJourneyParser builds a JourneyParser bound to pattern.
func NewJourneyParser(pattern *idconfig.PatternConfig) *JourneyParser {
	return &JourneyParser{
		pattern:   pattern,
		headingRe: regexp.MustCompile(`^#+\s+(\S+):\s*(.*)$`),
		fieldRe:   regexp.MustCompile(`(?i)^\s*\*\*(Actor|Goal|Context|Expected Outcome)\*\*\s*:\s*(.+)$`),
		stepRe:    regexp.MustCompile(`^\s*\d+\.\s+(.*)$`),
		endRe:     regexp.MustCompile(`^\*End\*`),
	}
}

// Parse scans lines for journey blocks.
func (p *JourneyParser) Parse(lines []Line) []ParsedContent {
	var out []ParsedContent
	i := 0
	for i < len(lines) {
		m := p.headingRe.FindStringSubmatch(lines[i].Text)
		if m == nil || !p.pattern.IsValidJourney(m[1]) {
			i++
			continue
		}
		content, next := p.parseBlock(lines, i, m[1], m[2])
		out = append(out, content)
		i = next
	}
	return out
}

func (p *JourneyParser) parseBlock(lines []Line, start int, id, title string) (ParsedContent, int) {
	data := map[string]any{
		"id":    id,
		"title": strings.TrimSpace(title),
	}
	var steps []string
	i := start + 1
	endExclusive := len(lines)
	for i < len(lines) {
		text := lines[i].Text
		if p.endRe.MatchString(strings.TrimSpace(text)) {
			endExclusive = i
			i++
			if i < len(lines) && strings.TrimSpace(lines[i].Text) == "---" {
				i++
			}
			break
		}
		if m := p.headingRe.FindStringSubmatch(text); m != nil && (p.pattern.IsValid(m[1]) || p.pattern.IsValidJourney(m[1])) {
			endExclusive = i
			break
		}
		if m := p.fieldRe.FindStringSubmatch(text); m != nil {
			key := strings.ToLower(strings.ReplaceAll(m[1], " ", "_"))
			data[key] = strings.TrimSpace(m[2])
			i++
			continue
		}
		if m := p.stepRe.FindStringSubmatch(text); m != nil {
			steps = append(steps, strings.TrimSpace(m[1]))
		}
		i++
	}
	data["steps"] = steps

	content := ParsedContent{
		Type:      ContentJourney,
		StartLine: lines[start].Number,
		EndLine:   lines[min(endExclusive, len(lines)-1)].Number,
		RawText:   joinRaw(lines[start:min(endExclusive+1, len(lines))]),
		Data:      data,
	}
	return content, i
}
