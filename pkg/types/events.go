package types

// EventKind identifies what happened to a node or invocation
type EventKind string

// Event kinds emitted during resolution and execution
const (
	// EventNodeFresh fires for nodes whose digests match the baseline
	EventNodeFresh EventKind = "node_fresh"

	// EventNodeStale fires when a node is queued for rebuilding
	EventNodeStale EventKind = "node_stale"

	// EventNodeBuilding fires just before a node's command runs
	EventNodeBuilding EventKind = "node_building"

	// EventNodeBuilt fires after a node's command succeeds
	EventNodeBuilt EventKind = "node_built"

	// EventNodeFailed fires when a node's command fails; execution stops
	EventNodeFailed EventKind = "node_failed"

	// EventNodeSkipped fires in dry-run mode for nodes that would build
	EventNodeSkipped EventKind = "node_skipped"

	// EventCommitted fires once the new baseline has been persisted
	EventCommitted EventKind = "committed"
)

// BuildEvent is a structured record of one step of an invocation.
// The core never prints; it publishes these and lets the display layer
// decide how to render them.
type BuildEvent struct {
	Kind    EventKind
	Path    string
	Command string
	Stdout  string
	Stderr  string
	Err     error
}

// EventSink receives build events as they happen
type EventSink interface {
	Publish(event BuildEvent)
}

// NopSink discards every event; useful in tests and library callers
// that only care about the returned error.
type NopSink struct{}

// Publish implements EventSink
func (NopSink) Publish(BuildEvent) {}

// CollectorSink records events in order; test helper
type CollectorSink struct {
	Events []BuildEvent
}

// Publish implements EventSink
func (c *CollectorSink) Publish(event BuildEvent) {
	c.Events = append(c.Events, event)
}

// Kinds returns just the event kinds, in publish order
func (c *CollectorSink) Kinds() []EventKind {
	kinds := make([]EventKind, len(c.Events))
	for i, e := range c.Events {
		kinds[i] = e.Kind
	}
	return kinds
}
