// Package types holds the data structures shared between kiln's
// resolver, executor, and presentation layers.
package types

// Node represents one artifact in the dependency tree: the path that
// identifies it, the command that (re)produces it, and the artifacts it
// depends on. An empty command means the node is a pure input with
// nothing to run. A parent owns its direct children; the same path may
// appear in more than one subtree (a header shared by two compiled
// units), and the resolver reconciles those occurrences by identity.
type Node struct {
	Path    string
	Command string
	Deps    []*Node
}

// NewNode creates a node with the given path, command, and dependencies
func NewNode(path, command string, deps ...*Node) *Node {
	return &Node{Path: path, Command: command, Deps: deps}
}

// Input creates a node with no command, a pure input file
func Input(path string) *Node {
	return &Node{Path: path}
}
