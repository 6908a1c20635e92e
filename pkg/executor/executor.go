// Package executor consumes the build queue produced by the resolver:
// one command at a time, strictly in order, aborting on the first
// failure and refreshing fingerprints after every success.
package executor

import (
	"context"

	"github.com/arthur-debert/kiln/pkg/errors"
	"github.com/arthur-debert/kiln/pkg/fingerprint"
	"github.com/arthur-debert/kiln/pkg/logging"
	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/arthur-debert/kiln/pkg/types"
	"github.com/rs/zerolog"
)

// Executor runs a build queue
type Executor struct {
	logger   zerolog.Logger
	root     string
	runner   CommandRunner
	digester fingerprint.Digester
	sink     types.EventSink
	dryRun   bool
}

// New creates an executor rooted at the project directory
func New(root string, runner CommandRunner, digester fingerprint.Digester, sink types.EventSink) *Executor {
	if sink == nil {
		sink = types.NopSink{}
	}
	return &Executor{
		logger:   logging.GetLogger("executor"),
		root:     root,
		runner:   runner,
		digester: digester,
		sink:     sink,
	}
}

// EnableDryRun makes Execute report what would run without running it
func (e *Executor) EnableDryRun(dryRun bool) *Executor {
	e.dryRun = dryRun
	return e
}

// Execute runs every node in the queue in order. After each successful
// command (and immediately for no-action nodes) the node's entries in
// the snapshot are refreshed from the post-execution disk state, so an
// output that did not exist during resolution is recorded as what the
// command actually produced. The first failure aborts the remaining
// queue and is returned with the failing command attached.
func (e *Executor) Execute(ctx context.Context, queue []*types.Node, snapshot *fingerprint.Store) error {
	for _, node := range queue {
		if e.dryRun {
			e.sink.Publish(types.BuildEvent{Kind: types.EventNodeSkipped, Path: node.Path, Command: node.Command})
			continue
		}

		if node.Command != "" {
			if err := e.runCommand(ctx, node); err != nil {
				return err
			}
		}

		onDisk := paths.OnDisk(e.root, node.Path)
		if err := snapshot.Refresh(node.Path, onDisk, node.Command, e.digester); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runCommand(ctx context.Context, node *types.Node) error {
	e.logger.Info().
		Str("path", node.Path).
		Str("command", node.Command).
		Msg("Building")
	e.sink.Publish(types.BuildEvent{Kind: types.EventNodeBuilding, Path: node.Path, Command: node.Command})

	result, err := e.runner.Run(ctx, node.Command, e.root)
	if err != nil {
		e.sink.Publish(types.BuildEvent{Kind: types.EventNodeFailed, Path: node.Path, Command: node.Command, Err: err})
		return err
	}

	if result.ExitCode != 0 {
		e.logger.Error().
			Str("command", node.Command).
			Int("exitCode", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command failed")
		failure := errors.Newf(errors.ErrCommandFailed, "build command failed: %s", node.Command).
			WithDetail("exitCode", result.ExitCode).
			WithDetail("stderr", result.Stderr)
		e.sink.Publish(types.BuildEvent{
			Kind:    types.EventNodeFailed,
			Path:    node.Path,
			Command: node.Command,
			Stderr:  result.Stderr,
			Err:     failure,
		})
		return failure
	}

	e.sink.Publish(types.BuildEvent{
		Kind:    types.EventNodeBuilt,
		Path:    node.Path,
		Command: node.Command,
		Stdout:  result.Stdout,
	})
	return nil
}
