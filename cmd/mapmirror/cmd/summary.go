package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

var (
	okColor    = lipgloss.Color("#85DCB0")
	warnColor  = lipgloss.Color("#F6AE2D")
	errColor   = lipgloss.Color("#E85D75")
	mutedColor = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(okColor)
	warnStyle  = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle = lipgloss.NewStyle().Foreground(errColor).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(18)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// consoleProgress prints one line per processed map.
type consoleProgress struct {
	out io.Writer
}

func newConsoleProgress(out io.Writer) mirrortypes.ProgressReporter {
	if quiet {
		return nil
	}
	return &consoleProgress{out: out}
}

func (p *consoleProgress) StateChanged(_, to mirrortypes.RunState) {
	if verbose {
		fmt.Fprintln(p.out, mutedStyle.Render("» "+to.String()))
	}
}

func (p *consoleProgress) ItemDone(r mirrortypes.ItemReport) {
	fmt.Fprintln(p.out, itemLine(r))
}

func itemLine(r mirrortypes.ItemReport) string {
	name := r.Item.Entry.Filename
	switch r.Status {
	case mirrortypes.ItemCommitted:
		return fmt.Sprintf("%s %s %s", okStyle.Render("✓"), name, mutedStyle.Render(humanize.Bytes(uint64(max(r.Size, 0)))))
	case mirrortypes.ItemInvalid:
		return fmt.Sprintf("%s %s %s", warnStyle.Render("✗"), name, mutedStyle.Render(r.Reason))
	case mirrortypes.ItemFetchFailed:
		return fmt.Sprintf("%s %s %s", warnStyle.Render("!"), name, mutedStyle.Render(r.Reason))
	default:
		return fmt.Sprintf("%s %s %s", errorStyle.Render("✗"), name, r.Reason)
	}
}

func row(label string, value any) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), fmt.Sprint(value))
}

func stateBadge(s mirrortypes.RunState) string {
	switch s {
	case mirrortypes.StateDone:
		return okStyle.Render(s.String())
	case mirrortypes.StateFailed:
		return errorStyle.Render(s.String())
	default:
		return warnStyle.Render(s.String())
	}
}

func syncSummary(r *mirrortypes.Result) string {
	if r == nil {
		return ""
	}
	lines := []string{
		titleStyle.Render("Sync " + stateBadge(r.State)),
		row("run", r.RunID),
		row("state from", r.Source),
		row("known", r.Known),
		row("catalog", r.Candidates),
		row("missing", r.Missing),
		row("uploaded", fmt.Sprintf("%d (%s)", r.Committed, humanize.Bytes(uint64(max(r.Bytes, 0))))),
		row("skipped", fmt.Sprintf("%d (%d download, %d checksum)", r.Skipped(), r.FetchFailed, r.Invalid)),
		row("artifacts", fmt.Sprintf("%d written, %d failed", r.ArtifactsWritten, r.ArtifactsFailed)),
		row("peak in flight", fmt.Sprintf("%d / buffered %d", r.PeakInFlight, r.PeakBuffered)),
		row("duration", r.Duration.Round(time.Millisecond)),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func printSyncSummary(out io.Writer, r *mirrortypes.Result) {
	if s := syncSummary(r); s != "" {
		fmt.Fprintln(out, s)
	}
}

func cleanupSummary(r *mirrortypes.CleanupResult) string {
	if r == nil {
		return ""
	}
	title := "Cleanup"
	if r.DryRun {
		title += " (dry run)"
	}
	lines := []string{titleStyle.Render(title)}
	for _, key := range r.Stale {
		lines = append(lines, mutedStyle.Render("- "+key))
	}
	lines = append(lines,
		row("run", r.RunID),
		row("stored", r.Stored),
		row("catalog", r.Candidates),
		row("stale", len(r.Stale)),
	)
	if !r.DryRun {
		lines = append(lines,
			row("deleted", r.Deleted),
			row("delete failures", r.DeleteFailures),
			row("artifacts", fmt.Sprintf("%d written, %d failed", r.ArtifactsWritten, r.ArtifactsFailed)),
		)
	}
	lines = append(lines, row("duration", r.Duration.Round(time.Millisecond)))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func printCleanupSummary(out io.Writer, r *mirrortypes.CleanupResult) {
	if s := cleanupSummary(r); s != "" {
		fmt.Fprintln(out, s)
	}
}
