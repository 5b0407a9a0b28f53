// Package replay implements the disk replayer of spec.md §4.7 (component
// C7): it projects a graph's mutation log onto the spec files that
// produced it, via the five-step pipeline (detect external changes,
// coalesce, emit through text-level primitives, sync hashes, report),
// grounded on _examples/vjache-cie/pkg/ingestion/hash_delta.go's
// detect-then-report shape and
// _examples/original_source/src/elspais/utilities/spec_writer.py's
// block-rewrite primitives.
package replay

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/idconfig"
)

// Replayer projects one graph's mutation log against repoRoot's files.
type Replayer struct {
	g        *graph.Graph
	repoRoot string
	hashMode idconfig.HashMode
	log      *slog.Logger
	clock    func() int64
}

// New returns a Replayer bound to g, resolving node source paths under
// repoRoot. A nil logger falls back to slog.Default().
func New(g *graph.Graph, repoRoot string, hashMode idconfig.HashMode, log *slog.Logger) *Replayer {
	if log == nil {
		log = slog.Default()
	}
	return &Replayer{g: g, repoRoot: repoRoot, hashMode: hashMode, log: log}
}

// SetClock installs a timestamp source for the advanced BuildTimestamp on
// a successful replay, mirroring graph.MutationLog.SetClock and
// builder.Builder.SetClock so tests can pin a deterministic value.
func (r *Replayer) SetClock(clock func() int64) { r.clock = clock }

func (r *Replayer) now() int64 {
	if r.clock != nil {
		return r.clock()
	}
	return time.Now().Unix()
}

// reqWork is one requirement's resolved file path plus its needed edits.
type reqWork struct {
	req  *graph.Node
	ops  reqOps
	path string
}

// Replay executes the five-step pipeline and returns its report. It never
// returns a Go error: every failure mode is surfaced as a Report field,
// per spec.md §7's "the replayer aggregates per-file errors and returns a
// single structured report".
func (r *Replayer) Replay() *Report {
	entries := r.g.Log.Entries()
	if len(entries) == 0 {
		return &Report{Success: true}
	}

	reqOpsByID, skipped := collectReqOps(r.g, entries)
	report := &Report{Skipped: skipped}

	var work []reqWork
	fileSet := map[string]bool{}
	for reqID, ops := range reqOpsByID {
		req := r.g.FindByID(reqID)
		if req == nil || !req.Location.HasLocation() {
			report.Skipped = append(report.Skipped, reqID+": no source file")
			continue
		}
		path := resolvePath(r.repoRoot, req.Location.Path)
		work = append(work, reqWork{req: req, ops: ops, path: path})
		fileSet[path] = true
	}
	sort.Slice(work, func(i, j int) bool { return work[i].req.ID < work[j].req.ID })

	var paths []string
	for p := range fileSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	conflicts, statErrors := detectConflicts(paths, r.g.BuildTimestamp)
	if len(conflicts) > 0 {
		report.Conflicts = conflicts
		report.Success = false
		r.log.Warn("replay.conflict", "files", conflicts)
		return report
	}
	report.Errors = append(report.Errors, statErrors...)

	byFile := map[string][]reqWork{}
	for _, w := range work {
		byFile[w.path] = append(byFile[w.path], w)
	}

	var filesModified []string
	for _, path := range paths {
		reqs, ok := byFile[path]
		if !ok {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		text := string(content)
		changed := false
		for _, w := range reqs {
			newText, err := r.applyReqOps(text, w.req, w.ops)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s (%s): %v", path, w.req.ID, err))
				continue
			}
			if newText != text {
				text = newText
				changed = true
			}
			report.SavedCount++
		}
		if !changed {
			continue
		}
		if err := atomicWrite(path, text); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		filesModified = append(filesModified, path)
	}
	sort.Strings(filesModified)
	report.FilesModified = filesModified
	report.Success = len(report.Errors) == 0

	if report.Success {
		r.g.Log.Clear()
		r.g.BuildTimestamp = r.now()
		r.log.Info("replay.done", "saved", report.SavedCount, "files", len(filesModified))
	}
	return report
}

// applyReqOps applies every needed edit for one requirement to content,
// in a fixed order (title, status, implements/refines, assertion text,
// new assertions, hash last — per spec.md §4.7 step 4, hash sync runs
// "after all edits for a requirement are applied").
func (r *Replayer) applyReqOps(content string, req *graph.Node, ops reqOps) (string, error) {
	var err error

	if ops.title {
		content, err = ModifyTitle(content, req.ID, req.Label)
		if err != nil {
			return content, err
		}
	}
	if ops.status {
		status, _ := req.Content["status"].(string)
		content, err = ModifyStatus(content, req.ID, status)
		if err != nil {
			return content, err
		}
	}
	if ops.edgeTouched {
		content, err = ModifyImplements(content, req.ID, edgeTargetIDs(req, graph.EdgeImplements))
		if err != nil {
			return content, err
		}
		content, err = modifyReferenceField(content, req.ID, "Refines", edgeTargetIDs(req, graph.EdgeRefines))
		if err != nil {
			return content, err
		}
	}

	for _, label := range sortedKeys(ops.assertionLabels) {
		text, ok := assertionText(req, label)
		if !ok {
			continue
		}
		content, err = ModifyAssertionText(content, req.ID, label, text)
		if err != nil {
			return content, err
		}
	}
	for _, label := range sortedKeys(ops.addAssertions) {
		text, ok := assertionText(req, label)
		if !ok {
			continue
		}
		content, err = AddAssertionToFile(content, req.ID, label, text)
		if err != nil {
			return content, err
		}
	}

	if ops.hashSync {
		hash, _ := req.Content["hash"].(string)
		content, err = UpdateHashInFile(content, req.ID, hash)
		if err != nil {
			return content, err
		}
	}
	return content, nil
}

func edgeTargetIDs(req *graph.Node, kind graph.EdgeKind) []string {
	var ids []string
	for _, e := range req.Outgoing() {
		if e.Kind == kind {
			ids = append(ids, e.Target.ID)
		}
	}
	return ids
}

func assertionText(req *graph.Node, label string) (string, bool) {
	for _, c := range req.Children() {
		if c.Kind != graph.KindAssertion || c.IsTombstoned() {
			continue
		}
		if l, _ := c.Content["label"].(string); l == label {
			text, _ := c.Content["text"].(string)
			return text, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
