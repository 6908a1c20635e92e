// Package graph walks a dependency tree bottom-up, decides which nodes
// are stale against the fingerprint baseline, and produces the build
// queue plus a fresh fingerprint snapshot.
package graph

import (
	"github.com/arthur-debert/kiln/pkg/fingerprint"
	"github.com/arthur-debert/kiln/pkg/logging"
	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/arthur-debert/kiln/pkg/types"
	"github.com/rs/zerolog"
)

// Resolver compares a node tree against a baseline store. Node paths
// are fingerprint identities; project-relative ones are resolved
// against root before touching the disk.
type Resolver struct {
	logger   zerolog.Logger
	root     string
	digester fingerprint.Digester
	sink     types.EventSink
}

// NewResolver creates a resolver using the given digester and sink
func NewResolver(root string, digester fingerprint.Digester, sink types.EventSink) *Resolver {
	if sink == nil {
		sink = types.NopSink{}
	}
	return &Resolver{
		logger:   logging.GetLogger("resolver"),
		root:     root,
		digester: digester,
		sink:     sink,
	}
}

// Result holds what a resolution pass produced: the nodes to build, in
// dependency-first order, and a complete snapshot of current
// fingerprints for every identity visited, fresh or stale.
type Result struct {
	Queue    []*types.Node
	Snapshot *fingerprint.Store
}

// resolution carries the per-invocation state of one Resolve call
type resolution struct {
	*Resolver
	baseline *fingerprint.Store
	result   *Result
	// visited memoizes staleness per identity, so a path shared by
	// several subtrees is digested once and enqueued at most once per
	// invocation.
	visited map[string]bool
}

// Resolve walks the tree in post-order and returns the build queue and
// the new snapshot. The snapshot is a full rewrite of the baseline for
// the visited tree, not a diff: unchanged nodes are recorded too. Any
// I/O error while digesting aborts the pass; a partial queue is not
// usable.
func (r *Resolver) Resolve(root *types.Node, baseline *fingerprint.Store) (*Result, error) {
	res := &resolution{
		Resolver: r,
		baseline: baseline,
		result:   &Result{Snapshot: fingerprint.NewStore()},
		visited:  make(map[string]bool),
	}
	if _, err := res.visit(root); err != nil {
		return nil, err
	}
	r.logger.Debug().
		Int("queued", len(res.result.Queue)).
		Int("visited", len(res.visited)).
		Msg("Resolution complete")
	return res.result, nil
}

// visit returns whether the node is stale. Dependencies are visited in
// their declared order, and every one of them is visited even when an
// earlier sibling already made this node stale: each visit records the
// dependency's current fingerprints into the snapshot.
func (res *resolution) visit(node *types.Node) (bool, error) {
	if stale, ok := res.visited[node.Path]; ok {
		return stale, nil
	}

	depsStale := false
	for _, dep := range node.Deps {
		stale, err := res.visit(dep)
		if err != nil {
			return false, err
		}
		depsStale = depsStale || stale
	}

	commandChanged := res.commandChanged(node)
	contentChanged, err := res.contentChanged(node)
	if err != nil {
		return false, err
	}

	stale := depsStale || commandChanged || contentChanged
	res.visited[node.Path] = stale

	if stale {
		// Post-order append: every stale dependency is already queued
		res.result.Queue = append(res.result.Queue, node)
		res.logger.Debug().
			Str("path", node.Path).
			Bool("deps", depsStale).
			Bool("command", commandChanged).
			Bool("content", contentChanged).
			Msg("Node is stale")
		res.sink.Publish(types.BuildEvent{Kind: types.EventNodeStale, Path: node.Path, Command: node.Command})
	} else {
		res.sink.Publish(types.BuildEvent{Kind: types.EventNodeFresh, Path: node.Path})
	}
	return stale, nil
}

// commandChanged records the node's current command digest into the
// snapshot and reports whether it differs from the baseline. Absent
// from the baseline counts as changed.
func (res *resolution) commandChanged(node *types.Node) bool {
	current := res.digester.Command(node.Command)
	res.result.Snapshot.SetCommandDigest(node.Path, current)

	previous, ok := res.baseline.CommandDigest(node.Path)
	return !ok || current != previous
}

// contentChanged records the node's current content digest into the
// snapshot and reports whether it differs from the baseline, with the
// same absent-as-changed rule.
func (res *resolution) contentChanged(node *types.Node) (bool, error) {
	current, err := res.digester.File(paths.OnDisk(res.root, node.Path))
	if err != nil {
		return false, err
	}
	res.result.Snapshot.SetFileDigest(node.Path, current)

	previous, ok := res.baseline.FileDigest(node.Path)
	return !ok || current != previous, nil
}
