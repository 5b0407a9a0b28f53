package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/kraklabs/elspais/internal/idconfig"
)

// ComputeHash implements invariant I6: in "full-text" mode,
// hash = H(body_text), where a requirement with assertion children has
// "\n## Assertions\n" plus its assertion lines (built as in normalized
// mode) appended to body_text, since the parser's body_text stops before
// the Assertions section; in "normalized-text" mode,
// hash = H(concat(normalize(label_i + ". " + text_i) for each assertion
// child in label order)), where normalize strips trailing whitespace per
// line. The label+". "+text join is the canonical form fixing DESIGN.md's
// Open Question (a): the separator is part of the hashed bytes, so two
// renderings that differ only in how label and text are punctuated
// together are not accidentally equal.
func ComputeHash(req *Node, mode string) string {
	var payload string
	switch mode {
	case "normalized-text":
		payload = normalizedPayload(req)
	default:
		payload = bodyText(req)
		if assertions := normalizedPayload(req); assertions != "" {
			payload += "\n## Assertions\n" + assertions
		}
	}
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func bodyText(req *Node) string {
	if v, ok := req.Content["body_text"].(string); ok {
		return v
	}
	return ""
}

func normalizedPayload(req *Node) string {
	type labeled struct {
		label string
		text  string
	}
	var items []labeled
	for _, c := range req.Children() {
		if c.Kind != KindAssertion {
			continue
		}
		label, _ := c.Content["label"].(string)
		text, _ := c.Content["text"].(string)
		items = append(items, labeled{label: label, text: text})
	}
	sort.Slice(items, func(i, j int) bool { return idconfig.LabelLess(items[i].label, items[j].label) })

	var lines []string
	for _, it := range items {
		lines = append(lines, normalizeTrailingWhitespace(it.label+". "+it.text))
	}
	return strings.Join(lines, "\n")
}

// normalizeTrailingWhitespace strips trailing whitespace from each line,
// per invariant I6's normalize definition ("lowercases nothing but
// strips trailing whitespace").
func normalizeTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.Join(lines, "\n")
}
