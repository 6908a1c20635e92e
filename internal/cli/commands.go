// Package cli assembles kiln's command line interface.
package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/kiln/internal/version"
	"github.com/arthur-debert/kiln/pkg/cobrax/topics"
	"github.com/arthur-debert/kiln/pkg/config"
	"github.com/arthur-debert/kiln/pkg/core"
	"github.com/arthur-debert/kiln/pkg/display"
	"github.com/arthur-debert/kiln/pkg/logging"
	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var helpDocs embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dryRun    bool
		format    string
	)

	rootCmd := &cobra.Command{
		Use:   "kiln",
		Short: "An incremental C and C++ build tool",
		Long: `kiln builds C and C++ projects incrementally. It fingerprints source
files, headers, and compiler commands, and reruns only the compilations
whose inputs actually changed since the last successful build.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview commands without executing them")
	rootCmd.PersistentFlags().StringVar(&format, "format", "auto", "Output format: auto, term, or text")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newInitCmd())

	// Topic-based help from the embedded docs, rendered as markdown
	if docs, err := fs.Sub(helpDocs, "docs"); err == nil {
		_ = topics.InitializeWithOptions(rootCmd, docs, topics.Options{
			Renderer: topics.NewGlamourRenderer(),
		})
	}

	return rootCmd
}

// outputFormat resolves the --format flag against the actual stdout
func outputFormat(cmd *cobra.Command) (display.Format, error) {
	raw, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := display.ParseFormat(raw)
	if err != nil {
		return display.FormatText, err
	}
	return format.Resolve(os.Stdout), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kiln version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [variant]",
		Short: "Build the configured target",
		Long: `Build compiles every source whose fingerprint changed since the last
successful build, then links the target. With no argument the default
variant is built.`,
		Example: `  # Build the default variant
  kiln build

  # Build the debug variant
  kiln build debug

  # Preview what would be rebuilt
  kiln build --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			variant := ""
			if len(args) > 0 {
				variant = args[0]
			}

			log.Info().
				Str("variant", variant).
				Bool("dry_run", dryRun).
				Msg("Building")

			console := display.NewConsole(cmd.OutOrStdout(), format)
			result, err := core.Build(cmd.Context(), core.BuildOptions{
				Variant: variant,
				DryRun:  dryRun,
				Sink:    console,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), console.Summary(result.Variant, result.Queued, result.Committed))
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [variant]",
		Short: "Remove build outputs",
		Long: `Clean removes the build tree, forcing the next build to start from
scratch. With a variant argument only that variant's tree is removed;
other variants keep their outputs and baselines.`,
		Example: `  # Remove the whole build tree
  kiln clean

  # Remove only the debug tree
  kiln clean debug`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New("")
			if err != nil {
				return err
			}
			cfg, err := config.Load(p)
			if err != nil {
				return err
			}

			dir := filepath.Join(p.Root(), cfg.BuildPath)
			if len(args) > 0 {
				if _, err := cfg.Variant(args[0]); err != nil {
					return err
				}
				dir = p.VariantDir(cfg.BuildPath, args[0])
			}

			log.Info().Str("dir", dir).Msg("Cleaning build outputs")
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to clean %s: %w", dir, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", dir)
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [target]",
		Short: "Create a starter kiln.toml",
		Long: `Init writes a starter configuration file to the current directory.
The target name defaults to the directory name. Existing configuration
is never overwritten.`,
		Example: `  # Use the directory name as the target
  kiln init

  # Name the target explicitly
  kiln init hello`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New("")
			if err != nil {
				return err
			}

			target := filepath.Base(p.Root())
			if len(args) > 0 {
				target = args[0]
			}

			path, err := config.WriteStarter(p, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
