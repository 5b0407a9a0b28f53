package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/elspais/internal/idconfig"
)

// Language is the inferred source language of a non-Markdown file,
// drawn from a fixed extension table (spec.md §4.2.4).
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
	LangC          Language = "c"
	LangUnknown    Language = "unknown"
)

// DetectLanguage infers a Language from a file's extension.
func DetectLanguage(path string) Language {
	ext := extOf(path)
	switch ext {
	case ".go":
		return LangGo
	case ".py":
		return LangPython
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".tsx":
		return LangTypeScript
	case ".rs":
		return LangRust
	case ".c", ".h", ".cpp", ".hpp", ".cc":
		return LangC
	default:
		return LangUnknown
	}
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(path[idx:])
}

// symbolSpan is one function/method or class/struct/interface definition
// discovered by the AST pre-scan, used to build the per-line
// (function_name, class_name, defining_line) context table.
type symbolSpan struct {
	isClass      bool
	name         string
	definingLine int // 1-indexed
	startLine    int
	endLine      int
}

// lineContext is the per-line attribution the spec calls for: which
// function and which class (if any) a given line falls within.
type lineContext struct {
	FunctionName string
	ClassName    string
	DefiningLine int
}

// CodeParser emits code_ref ParsedContent for Implements:/Validates:
// single-line comments and IMPLEMENTS REQUIREMENTS: block comments
// (spec.md §4.2.4), grounded on
// _examples/vjache-cie/pkg/ingestion/parser_treesitter.go's per-language
// AST pre-scan for accurate function/class attribution, and on
// original_source/src/elspais/graph/parsers/code.py for the comment
// grammar itself.
type CodeParser struct {
	pattern *idconfig.PatternConfig
	refcfg  *idconfig.ReferenceConfig

	goPool sync.Pool
	pyPool sync.Pool
	jsPool sync.Pool
	tsPool sync.Pool
	once   sync.Once
}

// NewCodeParser builds a CodeParser bound to the given pattern and
// reference configuration.
func NewCodeParser(pattern *idconfig.PatternConfig, refcfg *idconfig.ReferenceConfig) *CodeParser {
	return &CodeParser{pattern: pattern, refcfg: refcfg}
}

func (p *CodeParser) initPools() {
	p.once.Do(func() {
		p.goPool.New = func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(golang.GetLanguage())
			return parser
		}
		p.pyPool.New = func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(python.GetLanguage())
			return parser
		}
		p.jsPool.New = func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(javascript.GetLanguage())
			return parser
		}
		p.tsPool.New = func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(typescript.GetLanguage())
			return parser
		}
	})
}

// CodeRefKeyword distinguishes which keyword matched a code_ref record.
type CodeRefKeyword string

const (
	KeywordImplements CodeRefKeyword = "implements"
	KeywordValidates  CodeRefKeyword = "validates"
)

// Parse reads a non-Markdown source file's lines and content, builds the
// function/class context table via tree-sitter (unsupported languages get
// no context table, so their reference comments are still scanned but
// never attributed to an enclosing function/class), then scans for
// single-line and block-form reference comments.
func (p *CodeParser) Parse(path string, content []byte, lines []Line) []ParsedContent {
	lang := DetectLanguage(path)
	spans := p.buildContext(lang, content)
	ctxByLine := attributeLines(spans, len(lines))
	fixupCommentContext(lines, ctxByLine)

	// BuildImplementsRegex is case-insensitive, so the configured
	// "Implements" keyword already matches a bare "IMPLEMENTS:" form;
	// LegacyImplements only matters to the test scanner's standalone
	// IMPLEMENTS/Validates split, not here.
	var out []ParsedContent
	out = append(out, p.scanSingleLine(lines, ctxByLine, p.refcfg.ImplementsKeyword, KeywordImplements)...)
	out = append(out, p.scanSingleLine(lines, ctxByLine, p.refcfg.ValidatesKeyword, KeywordValidates)...)
	if p.refcfg.ValidatesSynonym != "" {
		out = append(out, p.scanSingleLine(lines, ctxByLine, p.refcfg.ValidatesSynonym, KeywordValidates)...)
	}
	out = append(out, p.scanBlockForm(lines, ctxByLine)...)
	return out
}

func (p *CodeParser) buildContext(lang Language, content []byte) []symbolSpan {
	p.initPools()
	switch lang {
	case LangGo:
		return p.walkWithPool(&p.goPool, content, goSpanExtractor)
	case LangPython:
		return p.walkWithPool(&p.pyPool, content, pythonSpanExtractor)
	case LangJavaScript:
		return p.walkWithPool(&p.jsPool, content, jsSpanExtractor)
	case LangTypeScript:
		return p.walkWithPool(&p.tsPool, content, jsSpanExtractor)
	default:
		return nil
	}
}

func (p *CodeParser) walkWithPool(pool *sync.Pool, content []byte, extract func(*sitter.Node, []byte) []symbolSpan) []symbolSpan {
	parserObj := pool.Get()
	parser, ok := parserObj.(*sitter.Parser)
	if !ok {
		return nil
	}
	defer pool.Put(parser)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}
	defer tree.Close()
	return extract(tree.RootNode(), content)
}

// goSpanExtractor walks a Go AST collecting function_declaration,
// method_declaration, and type_declaration(struct/interface) spans.
func goSpanExtractor(root *sitter.Node, content []byte) []symbolSpan {
	var spans []symbolSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_declaration", "method_declaration":
			name := fieldText(n, "name", content)
			spans = append(spans, symbolSpan{
				name:         name,
				definingLine: int(n.StartPoint().Row) + 1,
				startLine:    int(n.StartPoint().Row) + 1,
				endLine:      int(n.EndPoint().Row) + 1,
			})
		case "type_spec":
			name := fieldText(n, "name", content)
			spans = append(spans, symbolSpan{
				isClass:      true,
				name:         name,
				definingLine: int(n.StartPoint().Row) + 1,
				startLine:    int(n.StartPoint().Row) + 1,
				endLine:      int(n.EndPoint().Row) + 1,
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return spans
}

func pythonSpanExtractor(root *sitter.Node, content []byte) []symbolSpan {
	var spans []symbolSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition":
			name := fieldText(n, "name", content)
			spans = append(spans, symbolSpan{
				name:         name,
				definingLine: int(n.StartPoint().Row) + 1,
				startLine:    int(n.StartPoint().Row) + 1,
				endLine:      int(n.EndPoint().Row) + 1,
			})
		case "class_definition":
			name := fieldText(n, "name", content)
			spans = append(spans, symbolSpan{
				isClass:      true,
				name:         name,
				definingLine: int(n.StartPoint().Row) + 1,
				startLine:    int(n.StartPoint().Row) + 1,
				endLine:      int(n.EndPoint().Row) + 1,
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return spans
}

func jsSpanExtractor(root *sitter.Node, content []byte) []symbolSpan {
	var spans []symbolSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_declaration", "method_definition":
			name := fieldText(n, "name", content)
			spans = append(spans, symbolSpan{
				name:         name,
				definingLine: int(n.StartPoint().Row) + 1,
				startLine:    int(n.StartPoint().Row) + 1,
				endLine:      int(n.EndPoint().Row) + 1,
			})
		case "class_declaration":
			name := fieldText(n, "name", content)
			spans = append(spans, symbolSpan{
				isClass:      true,
				name:         name,
				definingLine: int(n.StartPoint().Row) + 1,
				startLine:    int(n.StartPoint().Row) + 1,
				endLine:      int(n.EndPoint().Row) + 1,
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return spans
}

func fieldText(n *sitter.Node, field string, content []byte) string {
	f := n.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return string(content[f.StartByte():f.EndByte()])
}

// attributeLines maps each 1-indexed line to the innermost enclosing
// function and class span, per spec.md §4.2.4's "pre-scan" step.
func attributeLines(spans []symbolSpan, lineCount int) []lineContext {
	out := make([]lineContext, lineCount+1) // index 0 unused
	for _, s := range spans {
		for line := s.startLine; line <= s.endLine && line <= lineCount; line++ {
			if s.isClass {
				if out[line].ClassName == "" || spanNarrower(s, out, line) {
					out[line].ClassName = s.name
				}
			} else {
				if out[line].FunctionName == "" || spanNarrower(s, out, line) {
					out[line].FunctionName = s.name
					out[line].DefiningLine = s.definingLine
				}
			}
		}
	}
	return out
}

// spanNarrower is a conservative placeholder for nested-span precedence:
// since spans are walked in AST pre-order (outer before inner), a later
// write always comes from a more deeply nested node, so last-write-wins
// already prefers the innermost span.
func spanNarrower(_ symbolSpan, _ []lineContext, _ int) bool { return true }

// fixupCommentContext implements the spec's "additional forward-look
// fixes up comment lines that sit above a definition": a contiguous run
// of comment-only lines immediately preceding a line with a function
// context is attributed to that same context, so a doc comment carrying
// an Implements: annotation above a function resolves correctly.
func fixupCommentContext(lines []Line, ctxByLine []lineContext) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i].Number
		if line >= len(ctxByLine) {
			continue
		}
		if ctxByLine[line].FunctionName != "" {
			continue
		}
		if !looksLikeComment(lines[i].Text) {
			continue
		}
		// Find the next non-blank, non-comment line below this run.
		j := i + 1
		for j < len(lines) && (strings.TrimSpace(lines[j].Text) == "" || looksLikeComment(lines[j].Text)) {
			j++
		}
		if j < len(lines) && lines[j].Number < len(ctxByLine) && ctxByLine[lines[j].Number].FunctionName != "" {
			ctxByLine[line] = ctxByLine[lines[j].Number]
		}
	}
}

func looksLikeComment(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "#") || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "*") ||
		strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "--")
}

func (p *CodeParser) scanSingleLine(lines []Line, ctxByLine []lineContext, keyword string, kw CodeRefKeyword) []ParsedContent {
	if keyword == "" {
		return nil
	}
	re := p.refcfg.BuildImplementsRegex(p.pattern, keyword)
	var out []ParsedContent
	for _, l := range lines {
		m := re.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		ids := splitAndTrim(m[1])
		if len(ids) == 0 {
			continue
		}
		out = append(out, codeRefContent(l, ids, kw, ctxByLine))
	}
	return out
}

var splitComma = regexp.MustCompile(`\s*,\s*`)

func splitAndTrim(s string) []string {
	parts := splitComma.Split(strings.TrimSpace(s), -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func codeRefContent(l Line, ids []string, kw CodeRefKeyword, ctxByLine []lineContext) ParsedContent {
	var fn, cls string
	var defLine int
	if l.Number < len(ctxByLine) {
		fn = ctxByLine[l.Number].FunctionName
		cls = ctxByLine[l.Number].ClassName
		defLine = ctxByLine[l.Number].DefiningLine
	}
	return ParsedContent{
		Type:      ContentCodeRef,
		StartLine: l.Number,
		EndLine:   l.Number,
		RawText:   l.Text,
		Data: map[string]any{
			"ids":           ids,
			"keyword":       string(kw),
			"function_name": fn,
			"class_name":    cls,
			"defining_line": defLine,
		},
	}
}

// scanBlockForm emits code_ref records for the block form:
//
//	// IMPLEMENTS REQUIREMENTS:
//	//   REQ-p00001: short description
//	//
//	//   REQ-p00002: another
func (p *CodeParser) scanBlockForm(lines []Line, ctxByLine []lineContext) []ParsedContent {
	hdrRe := p.refcfg.BuildBlockHeaderRegex()
	refRe := p.refcfg.BuildBlockRefRegex(p.pattern)

	var out []ParsedContent
	i := 0
	for i < len(lines) {
		if !hdrRe.MatchString(lines[i].Text) {
			i++
			continue
		}
		headerLine := lines[i]
		i++
		var ids []string
		startLine := headerLine.Number
		endLine := headerLine.Number
		for i < len(lines) {
			text := lines[i].Text
			if strings.TrimSpace(stripCommentMarkers(text)) == "" {
				i++
				continue
			}
			m := refRe.FindStringSubmatch(text)
			if m == nil {
				break
			}
			ids = append(ids, m[1])
			endLine = lines[i].Number
			i++
		}
		if len(ids) > 0 {
			out = append(out, codeRefBlockContent(startLine, endLine, ids, ctxByLine))
		}
	}
	return out
}

func stripCommentMarkers(s string) string {
	s = strings.TrimSpace(s)
	for _, marker := range []string{"#", "//", "--", "/*", "*/", "<!--", "-->"} {
		s = strings.TrimPrefix(s, marker)
	}
	return strings.TrimSpace(s)
}

func codeRefBlockContent(startLine, endLine int, ids []string, ctxByLine []lineContext) ParsedContent {
	var fn, cls string
	var defLine int
	if startLine < len(ctxByLine) {
		fn = ctxByLine[startLine].FunctionName
		cls = ctxByLine[startLine].ClassName
		defLine = ctxByLine[startLine].DefiningLine
	}
	return ParsedContent{
		Type:      ContentCodeRef,
		StartLine: startLine,
		EndLine:   endLine,
		RawText:   fmt.Sprintf("block implements (%d ids)", len(ids)),
		Data: map[string]any{
			"ids":           ids,
			"keyword":       string(KeywordImplements),
			"function_name": fn,
			"class_name":    cls,
			"defining_line": defLine,
			"block_form":    true,
		},
	}
}
