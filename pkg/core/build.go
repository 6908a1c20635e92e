// Package core wires the build pipeline together: configuration,
// toolchain layout, resolution, execution, and the all-or-nothing
// baseline commit.
package core

import (
	"context"

	"github.com/arthur-debert/kiln/pkg/compiledb"
	"github.com/arthur-debert/kiln/pkg/config"
	"github.com/arthur-debert/kiln/pkg/executor"
	"github.com/arthur-debert/kiln/pkg/fingerprint"
	"github.com/arthur-debert/kiln/pkg/fsops"
	"github.com/arthur-debert/kiln/pkg/graph"
	"github.com/arthur-debert/kiln/pkg/logging"
	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/arthur-debert/kiln/pkg/toolchain"
	"github.com/arthur-debert/kiln/pkg/types"
)

// BuildOptions configures one invocation
type BuildOptions struct {
	// Root is the project directory; empty means the working directory
	Root string

	// Variant names the build variant; empty means the default
	Variant string

	// DryRun reports what would rebuild without running anything
	DryRun bool

	// Sink receives build events; nil discards them
	Sink types.EventSink

	// Runner overrides command execution; nil uses the shell runner
	Runner executor.CommandRunner
}

// BuildResult summarizes a completed invocation
type BuildResult struct {
	Variant   string
	Resolved  int
	Queued    int
	Committed bool
}

// Build runs one full invocation. The fingerprint baseline advances
// only when the whole queue executes cleanly; any failure leaves the
// previous baseline byte-for-byte intact, and the invocation is safe to
// repeat.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	logger := logging.GetLogger("core")
	done := logging.LogOperationStart(logger, "build")
	defer done()

	sink := opts.Sink
	if sink == nil {
		sink = types.NopSink{}
	}
	runner := opts.Runner
	if runner == nil {
		runner = executor.NewShellRunner()
	}

	p, err := paths.New(opts.Root)
	if err != nil {
		return nil, err
	}
	root := p.Root()

	cfg, err := config.Load(p)
	if err != nil {
		return nil, err
	}

	variantName := opts.Variant
	if variantName == "" {
		variantName = config.DefaultVariant
	}
	variant, err := cfg.Variant(variantName)
	if err != nil {
		return nil, err
	}

	sources, err := cfg.ExpandSources(root)
	if err != nil {
		return nil, err
	}

	project := toolchain.FromConfig(cfg, variantName, variant, sources)
	if err := project.LoadDepfiles(root); err != nil {
		return nil, err
	}
	tree := project.BuildTree()

	ops := fsops.New()
	if !opts.DryRun {
		if err := ops.MkdirAll(project.OutputDirs(root)...); err != nil {
			return nil, err
		}
	}

	dbPath := p.FingerprintDBPath(cfg.BuildPath, variantName)
	baseline, err := fingerprint.Load(dbPath)
	if err != nil {
		return nil, err
	}

	digester := fingerprint.NewMD5()
	resolved, err := graph.NewResolver(root, digester, sink).Resolve(tree, baseline)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Variant:  variantName,
		Resolved: len(resolved.Snapshot.Files),
		Queued:   len(resolved.Queue),
	}

	// The compilation database reflects the configured commands, not
	// what happens to be stale, so it is written before execution.
	if !opts.DryRun {
		if err := writeCompileDB(root, p, cfg, project, ops); err != nil {
			return nil, err
		}
	}

	exec := executor.New(root, runner, digester, sink).EnableDryRun(opts.DryRun)
	if err := exec.Execute(ctx, resolved.Queue, resolved.Snapshot); err != nil {
		return nil, err
	}

	if opts.DryRun {
		return result, nil
	}

	if err := resolved.Snapshot.Save(dbPath, ops); err != nil {
		return nil, err
	}
	result.Committed = true
	sink.Publish(types.BuildEvent{Kind: types.EventCommitted, Path: dbPath})
	logger.Info().
		Str("variant", variantName).
		Int("queued", result.Queued).
		Msg("Build committed")
	return result, nil
}

func writeCompileDB(root string, p *paths.Paths, cfg *config.Config, project *toolchain.Project, ops *fsops.Ops) error {
	entries := compiledb.Entries(root, project)
	data, err := compiledb.Encode(entries)
	if err != nil {
		return err
	}
	return ops.WriteFileAtomic(p.CompileDBPath(cfg.BuildPath), data, 0644)
}
