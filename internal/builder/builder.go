// Package builder assembles a graph.Graph from parsed content across an
// entire repository scan, per spec.md §4.4 (component C4). Assembly is
// order-independent: nodes are created first, then edge candidates are
// enqueued and resolved once every node exists, grounded on
// _examples/vjache-cie/pkg/ingestion/resolver.go's two-phase
// BuildIndex-then-resolve shape.
package builder

import (
	"log/slog"
	"time"

	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/idconfig"
	"github.com/kraklabs/elspais/internal/parser"
)

// FileContent is one scanned file's parser output, keyed by its
// repository-relative path.
type FileContent struct {
	Path         string
	Lines        []parser.Line
	Requirements []parser.ParsedContent
	Journeys     []parser.ParsedContent
	CodeRefs     []parser.ParsedContent
	Regions      []parser.ParsedContent
	Tests        []parser.TestRecord
	IsSource     bool // true for non-Markdown files eligible for CODE/REMAINDER nodes
}

// edgeCandidate is an unresolved reference enqueued during node creation
// and settled during Resolve (spec.md §4.4 steps 2-3).
type edgeCandidate struct {
	sourceID         string
	targetID         string
	kind             graph.EdgeKind
	assertionTargets []string
	expectedBroken   bool
}

// Builder assembles a graph.Graph from a stream of FileContent, per
// spec.md §4.4.
type Builder struct {
	pattern *idconfig.PatternConfig
	engine  *idconfig.EngineConfig
	log     *slog.Logger

	g          *graph.Graph
	candidates []edgeCandidate
	clock      func() int64
}

// New returns a Builder bound to pattern and engine, logging through log
// (a nil logger falls back to slog.Default()).
func New(pattern *idconfig.PatternConfig, engine *idconfig.EngineConfig, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{pattern: pattern, engine: engine, log: log, g: graph.New()}
}

// SetClock installs a timestamp source for the graph's BuildTimestamp,
// mirroring graph.MutationLog.SetClock's pattern so tests can pin a
// deterministic value instead of wall-clock time.
func (b *Builder) SetClock(clock func() int64) { b.clock = clock }

func (b *Builder) now() int64 {
	if b.clock != nil {
		return b.clock()
	}
	return time.Now().Unix()
}

// Build assembles files into a fresh graph.Graph and returns it. Given
// the same files in the same order, Build yields byte-identical graph
// state including internal orderings, per spec.md §4.4's determinism
// requirement.
func (b *Builder) Build(files []FileContent) *graph.Graph {
	b.log.Info("builder.start", "files", len(files))

	for _, f := range files {
		b.createRequirementNodes(f)
		b.createJourneyNodes(f)
		b.createFileNodes(f)
	}
	for _, f := range files {
		b.createCodeAndTestNodes(f)
	}

	b.resolve()
	b.computeHashes()
	b.g.BuildTimestamp = b.now()

	b.log.Info("builder.done",
		"nodes", b.g.NodeCount(),
		"broken_references", len(b.g.BrokenReferences()),
		"roots", len(b.g.IterRoots()),
	)
	return b.g
}

// ---- node creation (spec.md §4.4 step 1) -----------------------------

func (b *Builder) createRequirementNodes(f FileContent) {
	for _, rc := range f.Requirements {
		id, _ := rc.Data["id"].(string)
		title, _ := rc.Data["title"].(string)
		n := graph.NewNode(id, graph.KindRequirement, title)
		n.Location = graph.SourceLocation{Path: f.Path, Line: rc.StartLine, EndLine: rc.EndLine}
		if level, ok := rc.Data["level"].(string); ok {
			n.Content["level"] = level
		}
		status, _ := rc.Data["status"].(string)
		if status == "" {
			status = "draft"
		}
		n.Content["status"] = status
		n.Content["body_text"] = rc.Data["body_text"]
		if hash, ok := rc.Data["hash"].(string); ok {
			n.Content["declared_hash"] = hash
		}

		if err := b.g.AddNode(n); err != nil {
			b.log.Warn("builder.duplicate_requirement", "id", id, "file", f.Path, "err", err)
			continue
		}

		for _, ref := range stringList(rc.Data["implements"]) {
			b.enqueueRequirementRef(id, ref, graph.EdgeImplements)
		}
		for _, ref := range stringList(rc.Data["refines"]) {
			b.enqueueRequirementRef(id, ref, graph.EdgeRefines)
		}
		for _, ref := range stringList(rc.Data["addresses"]) {
			b.enqueueRequirementRef(id, ref, graph.EdgeAddresses)
		}

		assertions, _ := rc.Data["assertions"].([]parser.AssertionData)
		for _, a := range assertions {
			aid := b.pattern.AssertionID(id, a.Label)
			an := graph.NewNode(aid, graph.KindAssertion, a.Label)
			an.Location = graph.SourceLocation{Path: f.Path, Line: a.StartLine, EndLine: a.EndLine}
			an.Content["label"] = a.Label
			an.Content["text"] = a.Text
			an.Content["is_placeholder"] = a.IsPlaceholder
			if err := b.g.AddNode(an); err != nil {
				b.log.Warn("builder.duplicate_assertion", "id", aid, "file", f.Path, "err", err)
				continue
			}
			b.g.AddTreeLink(n, an)
		}
	}
}

// enqueueRequirementRef splits a target id that may carry a trailing
// assertion label and enqueues the corresponding candidate.
func (b *Builder) enqueueRequirementRef(sourceID, target string, kind graph.EdgeKind) {
	targetID, label := b.splitTarget(target)
	var labels []string
	if label != "" {
		labels = []string{label}
	}
	b.candidates = append(b.candidates, edgeCandidate{
		sourceID: sourceID, targetID: targetID, kind: kind, assertionTargets: labels,
	})
}

// splitTarget decomposes a reference string into its base requirement id
// and, if present, its assertion label.
func (b *Builder) splitTarget(ref string) (baseID, label string) {
	p, err := b.pattern.ParseID(ref)
	if err != nil {
		// Not a well-formed id at all; treat the whole string as the
		// target, which will surface as a broken reference.
		return ref, ""
	}
	if p.AssertionLabel == "" {
		return ref, ""
	}
	return b.pattern.RequirementID(ref), p.AssertionLabel
}

func (b *Builder) createJourneyNodes(f FileContent) {
	for _, jc := range f.Journeys {
		id, _ := jc.Data["id"].(string)
		title, _ := jc.Data["title"].(string)
		n := graph.NewNode(id, graph.KindUserJourney, title)
		n.Location = graph.SourceLocation{Path: f.Path, Line: jc.StartLine, EndLine: jc.EndLine}
		for k, v := range jc.Data {
			if k == "id" || k == "title" {
				continue
			}
			n.Content[k] = v
		}
		if err := b.g.AddNode(n); err != nil {
			b.log.Warn("builder.duplicate_journey", "id", id, "file", f.Path, "err", err)
		}
	}
}

// createFileNodes adds one FILE node per scanned file, plus its
// FILE_REGION children (preamble/inter_requirement/postamble), linked by
// CONTAINS tree links.
func (b *Builder) createFileNodes(f FileContent) {
	fileID := "FILE:" + f.Path
	fn := graph.NewNode(fileID, graph.KindFile, f.Path)
	fn.Location = graph.SourceLocation{Path: f.Path}
	if err := b.g.AddNode(fn); err != nil {
		b.log.Warn("builder.duplicate_file", "id", fileID, "err", err)
		return
	}
	for i, rc := range f.Regions {
		kind, _ := rc.Data["region_kind"].(string)
		rid := fileID + "#region" + itoa(i) + ":" + kind
		rn := graph.NewNode(rid, graph.KindFileRegion, kind)
		rn.Location = graph.SourceLocation{Path: f.Path, Line: rc.StartLine, EndLine: rc.EndLine}
		rn.Content["region_kind"] = kind
		rn.Content["raw_text"] = rc.RawText
		if err := b.g.AddNode(rn); err != nil {
			b.log.Warn("builder.duplicate_region", "id", rid, "err", err)
			continue
		}
		b.g.AddTreeLink(fn, rn)
	}
}

// createCodeAndTestNodes adds CODE nodes for each code_ref, TEST nodes
// for each scanned test function, and — for a source file with neither —
// a single REMAINDER node so coverage rollups see every scanned file.
func (b *Builder) createCodeAndTestNodes(f FileContent) {
	if !f.IsSource {
		return
	}
	fileID := "FILE:" + f.Path
	fn := b.g.FindByID(fileID)
	if fn == nil {
		return
	}

	for i, cr := range f.CodeRefs {
		cid := fileID + "#code" + itoa(i)
		fn2, _ := cr.Data["function_name"].(string)
		cn := graph.NewNode(cid, graph.KindCode, fn2)
		cn.Location = graph.SourceLocation{Path: f.Path, Line: cr.StartLine, EndLine: cr.EndLine}
		cn.Content["function_name"] = cr.Data["function_name"]
		cn.Content["class_name"] = cr.Data["class_name"]
		cn.Content["defining_line"] = cr.Data["defining_line"]
		if err := b.g.AddNode(cn); err != nil {
			b.log.Warn("builder.duplicate_code_ref", "id", cid, "err", err)
			continue
		}
		b.g.AddTreeLink(fn, cn)

		keyword, _ := cr.Data["keyword"].(string)
		kind := graph.EdgeImplements
		if keyword == "validates" {
			kind = graph.EdgeValidates
		}
		for _, ref := range stringList(cr.Data["ids"]) {
			targetID, label := b.splitTarget(ref)
			var labels []string
			if label != "" {
				labels = []string{label}
			}
			b.candidates = append(b.candidates, edgeCandidate{
				sourceID: cid, targetID: targetID, kind: kind, assertionTargets: labels,
			})
		}
	}

	for _, tr := range f.Tests {
		tn := graph.NewNode(tr.NodeID, graph.KindTest, tr.TestName)
		tn.Location = graph.SourceLocation{Path: f.Path, Line: tr.StartLine, EndLine: tr.EndLine}
		if err := b.g.AddNode(tn); err != nil {
			b.log.Warn("builder.duplicate_test", "id", tr.NodeID, "err", err)
			continue
		}
		b.g.AddTreeLink(fn, tn)

		for _, ref := range tr.ValidatesTargets {
			targetID, label := b.splitTarget(ref)
			var labels []string
			if label != "" {
				labels = []string{label}
			}
			b.candidates = append(b.candidates, edgeCandidate{
				sourceID: tr.NodeID, targetID: targetID, kind: graph.EdgeValidates, assertionTargets: labels,
			})
		}
		for _, ref := range tr.ExpectedBrokenTargets {
			targetID, label := b.splitTarget(ref)
			var labels []string
			if label != "" {
				labels = []string{label}
			}
			b.candidates = append(b.candidates, edgeCandidate{
				sourceID: tr.NodeID, targetID: targetID, kind: graph.EdgeValidates,
				assertionTargets: labels, expectedBroken: true,
			})
		}
	}

	if len(f.CodeRefs) == 0 && len(f.Tests) == 0 {
		rid := fileID + "#remainder"
		rn := graph.NewNode(rid, graph.KindRemainder, f.Path)
		if err := b.g.AddNode(rn); err != nil {
			b.log.Warn("builder.duplicate_remainder", "id", rid, "err", err)
			return
		}
		b.g.AddTreeLink(fn, rn)
	}
}

// ---- resolution (spec.md §4.4 step 3) --------------------------------

func (b *Builder) resolve() {
	for _, c := range b.candidates {
		src := b.g.FindByID(c.sourceID)
		if src == nil {
			continue
		}
		tgt := b.resolveTarget(c.targetID, c.assertionTargets)
		if tgt == nil {
			b.g.AddBrokenReference(graph.BrokenReference{
				SourceID:       c.sourceID,
				TargetID:       c.targetID,
				Kind:           c.kind,
				AssertionLabel: firstOrEmpty(c.assertionTargets),
				ExpectedBroken: c.expectedBroken,
			})
			continue
		}

		e := &graph.Edge{Source: src, Target: tgt, Kind: c.kind, AssertionTargets: c.assertionTargets}
		b.g.AddEdgeRecord(e)

		if graph.IsTreeLinkKind(c.kind) {
			if b.g.WouldCreateCycle(tgt, src) {
				b.g.RemoveEdgeRecord(e)
				b.g.Validation.AddRejectedCycle(c.sourceID, c.targetID)
				b.log.Warn("builder.cycle_rejected", "source", c.sourceID, "target", c.targetID)
				continue
			}
			b.g.AddTreeLink(tgt, src)
		}
	}
}

// resolveTarget resolves a candidate's target id, preferring the
// requirement node itself; assertionTargets narrow the relation but the
// tree/edge target is always the requirement-level node (spec.md §4.4
// step 3: "the target may be a requirement or an assertion ID").
func (b *Builder) resolveTarget(targetID string, assertionTargets []string) *graph.Node {
	if n := b.g.FindByID(targetID); n != nil {
		return n
	}
	return nil
}

// ---- hashing (spec.md §4.4 step 4) -----------------------------------

func (b *Builder) computeHashes() {
	for _, n := range b.g.NodesByKind(graph.KindRequirement) {
		n.Content["hash"] = graph.ComputeHash(n, string(b.engine.HashMode))
	}
}

// ---- helpers -----------------------------------------------------------

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	default:
		return nil
	}
}

func firstOrEmpty(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
