// Package display renders build progress for the terminal. A Console
// subscribes to build events and streams one line per command as the
// executor works through the queue, the way compiler output normally
// scrolls by. Styling degrades to plain text when the output is piped
// or the terminal has no color support.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/kiln/pkg/display/styles"
	"github.com/arthur-debert/kiln/pkg/types"
	"github.com/pterm/pterm"
)

// Status classifies the outcome of a whole invocation
type Status string

const (
	StatusSuccess Status = "success" // Queue executed and baseline committed
	StatusFailed  Status = "failed"  // A command failed, baseline untouched
	StatusClean   Status = "clean"   // Nothing was stale
	StatusDry     Status = "dry"     // Dry run, nothing executed
)

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusSuccess:
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	case StatusFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case StatusClean:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Console streams build events to a writer. It implements
// types.EventSink and can be handed directly to a build invocation.
type Console struct {
	out    io.Writer
	format Format

	built   int
	failed  int
	skipped int
}

// NewConsole creates a console renderer. FormatAuto must be resolved by
// the caller before construction; the console treats it as plain text.
func NewConsole(out io.Writer, format Format) *Console {
	return &Console{out: out, format: format}
}

// Publish renders one build event
func (c *Console) Publish(e types.BuildEvent) {
	switch e.Kind {
	case types.EventNodeBuilding:
		c.line(c.styled("Command", e.Command))
	case types.EventNodeBuilt:
		c.built++
		if e.Stdout != "" {
			c.write(e.Stdout)
		}
	case types.EventNodeFailed:
		c.failed++
		c.line(c.styled("Error", "failed: ") + c.styled("FilePath", e.Path))
		if e.Stderr != "" {
			c.write(e.Stderr)
		}
	case types.EventNodeSkipped:
		c.skipped++
		c.line(c.styled("Muted", "would build ") + c.styled("FilePath", e.Path))
	}
}

// Summary renders the closing line for an invocation
func (c *Console) Summary(variant string, queued int, committed bool) string {
	switch {
	case queued == 0:
		return c.statusLine(StatusClean, fmt.Sprintf("Nothing to do for %s.", variant))
	case c.skipped > 0:
		return c.statusLine(StatusDry, fmt.Sprintf("Would run %d %s for %s.", c.skipped, plural(c.skipped, "command"), variant))
	case committed:
		return c.statusLine(StatusSuccess, fmt.Sprintf("Done. %d %s for %s.", c.built, plural(c.built, "command"), variant))
	default:
		return c.statusLine(StatusFailed, fmt.Sprintf("Build failed for %s.", variant))
	}
}

func (c *Console) statusLine(status Status, text string) string {
	if c.format != FormatTerminal {
		return text
	}
	return StatusStyle(status).Sprint(text)
}

func (c *Console) styled(name, text string) string {
	if c.format != FormatTerminal {
		return text
	}
	return styles.GetStyle(name).Render(text)
}

func (c *Console) line(text string) {
	fmt.Fprintln(c.out, text)
}

// write passes command output through, ensuring it ends with a newline
func (c *Console) write(text string) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(c.out, text)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
