package replay

import (
	"fmt"
	"regexp"
	"strings"
)

// headerPattern matches the requirement header line for a specific id,
// mirroring _examples/original_source/src/elspais/utilities/patterns.py's
// find_req_header and internal/parser/requirement.go's headingRe, but
// anchored to one id so the replayer can locate a single block.
func headerPattern(reqID string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(#+\s+` + regexp.QuoteMeta(reqID) + `:\s*)(.*)$`)
}

var nextHeaderPattern = regexp.MustCompile(`(?m)^#+\s+[A-Z]+-`)
var endMarkerPattern = regexp.MustCompile(`(?m)^(\*End\*\s+\*.*?\*\s*\|\s*\*\*Hash\*\*:\s*)(\S+)`)
var assertionsHeaderPattern = regexp.MustCompile(`(?m)^##\s+Assertions\s*$`)

// findHeader returns the header match's full span and the submatch index
// of the title group (2), or ok=false if req_id has no header in content.
func findHeader(content, reqID string) (m []int, ok bool) {
	loc := headerPattern(reqID).FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, false
	}
	return loc, true
}

// blockEnd returns the offset where req_id's block ends: the start of the
// next requirement header, or len(content) if this is the last block.
func blockEnd(content string, from int) int {
	loc := nextHeaderPattern.FindStringIndex(content[from:])
	if loc == nil {
		return len(content)
	}
	return from + loc[0]
}

// fieldValuePattern builds a pattern matching "**Field**: value" up to the
// next "|" or end of line, used by modify_status and the internal
// reference-list rewrite helper.
func fieldValuePattern(field string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)(\*\*` + regexp.QuoteMeta(field) + `\*\*\s*:\s*)([^|\r\n]*)`)
}

// trimTrailingSpace shrinks [start,end) leftward past trailing spaces and
// tabs, so a replacement doesn't clobber the separator whitespace before a
// "|" field divider or the newline.
func trimTrailingSpace(s string, start, end int) int {
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return end
}

// ModifyTitle implements modify_title(file, req_id, new_title): edits the
// requirement header line, preserving heading level and id, grounded on
// spec_writer.py's modify_title.
func ModifyTitle(content, reqID, newTitle string) (string, error) {
	m, ok := findHeader(content, reqID)
	if !ok {
		return "", fmt.Errorf("replay: header for %s not found", reqID)
	}
	titleStart, titleEnd := m[4], m[5]
	return content[:titleStart] + newTitle + content[titleEnd:], nil
}

// ModifyStatus implements modify_status(file, req_id, status): edits the
// **Status** field within req_id's metadata, wherever it appears in the
// block (the embedded metadata line or a standalone Status line).
func ModifyStatus(content, reqID, newStatus string) (string, error) {
	m, ok := findHeader(content, reqID)
	if !ok {
		return "", fmt.Errorf("replay: header for %s not found", reqID)
	}
	start := m[1]
	end := blockEnd(content, start)
	block := content[start:end]

	loc := fieldValuePattern("Status").FindStringSubmatchIndex(block)
	if loc == nil {
		return "", fmt.Errorf("replay: no **Status** field found for %s", reqID)
	}
	valStart, valEnd := loc[4], loc[5]
	valEnd = trimTrailingSpace(block, valStart, valEnd)

	newBlock := block[:valStart] + newStatus + block[valEnd:]
	return content[:start] + newBlock + content[end:], nil
}

// ModifyImplements implements modify_implements(file, req_id, ids):
// rewrites the **Implements** field to the given id list, or "-" if
// empty, grounded on spec_writer.py's modify_implements.
func ModifyImplements(content, reqID string, ids []string) (string, error) {
	return modifyReferenceField(content, reqID, "Implements", ids)
}

// modifyReferenceField rewrites the **<field>** value for req_id to ids
// (joined with ", ", or "-" if empty). Used for both Implements and
// Refines list rewrites: the original's modify_implements generalizes
// directly since both fields share the "**Field**: a, b" grammar (see
// internal/parser/requirement.go's metaRe, which already treats them
// identically).
func modifyReferenceField(content, reqID, field string, ids []string) (string, error) {
	m, ok := findHeader(content, reqID)
	if !ok {
		return "", fmt.Errorf("replay: header for %s not found", reqID)
	}
	start := m[1]
	end := blockEnd(content, start)
	block := content[start:end]

	newValue := "-"
	if len(ids) > 0 {
		newValue = strings.Join(ids, ", ")
	}

	loc := fieldValuePattern(field).FindStringSubmatchIndex(block)
	if loc == nil {
		// A requirement with no references of this kind often omits the
		// field entirely rather than writing "**Field**: -"; if the
		// target value is empty too there is nothing to change. Adding a
		// brand new field line for a requirement that never had one is
		// out of scope for this primitive.
		if newValue == "-" {
			return content, nil
		}
		return "", fmt.Errorf("replay: no **%s** field found for %s", field, reqID)
	}
	valStart, valEnd := loc[4], loc[5]
	valEnd = trimTrailingSpace(block, valStart, valEnd)

	newBlock := block[:valStart] + newValue + block[valEnd:]
	return content[:start] + newBlock + content[end:], nil
}

// ChangeReferenceType implements change_reference_type(file, req_id,
// target_id, new_type): moves a single target between the Implements and
// Refines fields by literal substring substitution, exactly mirroring
// spec_writer.py's change_reference_type (no list reconstruction needed
// since only one target moves).
func ChangeReferenceType(content, reqID, targetID, newType string) (string, error) {
	newTypeLower := strings.ToLower(newType)
	if newTypeLower != "implements" && newTypeLower != "refines" {
		return "", fmt.Errorf("replay: invalid reference type %q", newType)
	}
	candidates := []string{
		"**Implements**: " + targetID,
		"**Refines**: " + targetID,
		"Implements: " + targetID,
		"Refines: " + targetID,
	}
	display := strings.ToUpper(newTypeLower[:1]) + newTypeLower[1:]
	replacement := "**" + display + "**: " + targetID

	for _, c := range candidates {
		if idx := strings.Index(content, c); idx >= 0 {
			return content[:idx] + replacement + content[idx+len(c):], nil
		}
	}
	return "", fmt.Errorf("replay: reference to %s not found for %s", targetID, reqID)
}

// continuationLine reports whether line is an indented non-blank
// continuation line, matching internal/parser/requirement.go's
// isContinuation and spec_writer.py's continuation_pattern.
func continuationLine(line string) bool {
	if line == "" {
		return false
	}
	if line[0] != ' ' && line[0] != '\t' {
		return false
	}
	return strings.TrimLeft(line, " \t") != ""
}

// ModifyAssertionText implements modify_assertion_text(file, req_id,
// label, new_text): replaces one assertion's text, extending across
// indented continuation lines, grounded on spec_writer.py's
// modify_assertion_text.
func ModifyAssertionText(content, reqID, label, newText string) (string, error) {
	m, ok := findHeader(content, reqID)
	if !ok {
		return "", fmt.Errorf("replay: header for %s not found", reqID)
	}
	start := m[1]
	end := blockEnd(content, start)
	block := content[start:end]

	assertionPattern := regexp.MustCompile(`(?m)^(\s*` + regexp.QuoteMeta(label) + `\.\s+)(.+)$`)
	loc := assertionPattern.FindStringSubmatchIndex(block)
	if loc == nil {
		return "", fmt.Errorf("replay: assertion %s not found in %s", label, reqID)
	}
	textStart, textEnd := loc[4], loc[5]

	remaining := block[loc[1]:]
	lines := strings.Split(remaining, "\n")
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		if !continuationLine(line) {
			break
		}
		textEnd += 1 + len(line)
	}

	newBlock := block[:textStart] + newText + block[textEnd:]
	return content[:start] + newBlock + content[end:], nil
}

// AddAssertionToFile implements add_assertion_to_file(file, req_id,
// label, text): inserts a new assertion line after the last existing
// assertion in the requirement's "## Assertions" section, grounded on
// spec_writer.py's add_assertion_to_file.
func AddAssertionToFile(content, reqID, label, text string) (string, error) {
	m, ok := findHeader(content, reqID)
	if !ok {
		return "", fmt.Errorf("replay: header for %s not found", reqID)
	}
	start := m[1]
	end := blockEnd(content, start)
	block := content[start:end]

	headerLoc := assertionsHeaderPattern.FindStringIndex(block)
	if headerLoc == nil {
		return "", fmt.Errorf("replay: no ## Assertions section found in %s", reqID)
	}
	assertionsStart := headerLoc[1]

	assertionLinePattern := regexp.MustCompile(`(?m)^\s*[A-Z0-9]+\.\s+.+$`)
	lastEnd := -1
	for _, loc := range assertionLinePattern.FindAllStringIndex(block[assertionsStart:], -1) {
		candidateEnd := assertionsStart + loc[1]
		remaining := block[candidateEnd:]
		lines := strings.Split(remaining, "\n")
		for _, line := range lines[1:] {
			if line == "" {
				break
			}
			if !continuationLine(line) {
				break
			}
			candidateEnd += 1 + len(line)
		}
		lastEnd = candidateEnd
	}

	insertPos := assertionsStart
	if lastEnd >= 0 {
		insertPos = lastEnd
	}
	newLine := "\n" + label + ". " + text

	newBlock := block[:insertPos] + newLine + block[insertPos:]
	return content[:start] + newBlock + content[end:], nil
}

// UpdateHashInFile implements update_hash_in_file(file, req_id,
// new_hash): replaces the hash in the *End* marker, grounded on
// spec_writer.py's update_hash_in_file.
func UpdateHashInFile(content, reqID, newHash string) (string, error) {
	m, ok := findHeader(content, reqID)
	if !ok {
		return "", fmt.Errorf("replay: header for %s not found", reqID)
	}
	start := m[1]

	loc := endMarkerPattern.FindStringSubmatchIndex(content[start:])
	if loc == nil {
		return "", fmt.Errorf("replay: no *End* marker with **Hash** found for %s", reqID)
	}
	hashStart, hashEnd := start+loc[4], start+loc[5]
	endMarkerStart := start + loc[0]

	if nextStart := blockEnd(content, start); nextStart < endMarkerStart {
		return "", fmt.Errorf("replay: *End* marker for %s belongs to a different requirement", reqID)
	}

	return content[:hashStart] + newHash + content[hashEnd:], nil
}
