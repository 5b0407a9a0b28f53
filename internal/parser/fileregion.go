package parser

// FileStructureParser produces auxiliary FILE_REGION content: the
// preamble before the first requirement, the inter_requirement spans
// between consecutive requirements, and the postamble after the last
// one (spec.md §4.2.3). Used by the disk replayer (C7) to locate the
// exact span it may rewrite without perturbing surrounding prose.
//
// Grounded on original_source/src/elspais/utilities/spec_writer.py's
// need to locate a requirement's bounding span for in-place edits.
type FileStructureParser struct{}

// NewFileStructureParser returns a FileStructureParser.
func NewFileStructureParser() *FileStructureParser { return &FileStructureParser{} }

// Parse takes the file's lines and the already-parsed requirement
// ParsedContent list (sorted by StartLine) and emits preamble,
// inter_requirement, and postamble FILE_REGION records.
func (p *FileStructureParser) Parse(lines []Line, requirements []ParsedContent) []ParsedContent {
	if len(lines) == 0 {
		return nil
	}
	var out []ParsedContent
	if len(requirements) == 0 {
		out = append(out, region("preamble", lines, 1, lines[len(lines)-1].Number))
		return out
	}

	first := requirements[0]
	if first.StartLine > lines[0].Number {
		out = append(out, region("preamble", lines, lines[0].Number, first.StartLine-1))
	}

	for i := 0; i < len(requirements)-1; i++ {
		gapStart := requirements[i].EndLine + 1
		gapEnd := requirements[i+1].StartLine - 1
		if gapEnd >= gapStart {
			out = append(out, region("inter_requirement", lines, gapStart, gapEnd))
		}
	}

	last := requirements[len(requirements)-1]
	lastLineNum := lines[len(lines)-1].Number
	if last.EndLine < lastLineNum {
		out = append(out, region("postamble", lines, last.EndLine+1, lastLineNum))
	}
	return out
}

func region(kind string, lines []Line, startLine, endLine int) ParsedContent {
	var raw []Line
	for _, l := range lines {
		if l.Number >= startLine && l.Number <= endLine {
			raw = append(raw, l)
		}
	}
	return ParsedContent{
		Type:      ContentFileRegion,
		StartLine: startLine,
		EndLine:   endLine,
		RawText:   joinRaw(raw),
		Data:      map[string]any{"region_kind": kind},
	}
}
