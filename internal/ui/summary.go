package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/daunroda/internal/tasks"
)

// RenderSummary renders a finished run: one line per playlist followed by totals.
func RenderSummary(r *tasks.RunResult) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Run complete"))
	b.WriteString("\n")

	for _, pl := range r.Playlists {
		b.WriteString(renderPlaylist(pl))
		b.WriteString("\n")
	}

	if r.Reviewed > 0 {
		b.WriteString(fmt.Sprintf("Reviewed %d: %d approved, %d declined", r.Reviewed, r.Approved, r.Declined))
		if r.Failed > 0 {
			b.WriteString(", " + styles.err.Render(fmt.Sprintf("%d failed", r.Failed)))
		}
		b.WriteString("\n")
	}

	totals := fmt.Sprintf("Downloaded %d, not found %d, failed %d", r.Downloaded(), r.NotFound(), r.FailedTotal())
	if r.FailedTotal() > 0 {
		b.WriteString(styles.warn.Render(totals))
	} else {
		b.WriteString(styles.ok.Render(totals))
	}
	b.WriteString("\n")
	return b.String()
}

func renderPlaylist(pl tasks.PlaylistResult) string {
	if pl.Err != nil {
		return styles.err.Render(fmt.Sprintf("✗ %s: %v", pl.ID, pl.Err))
	}

	line := fmt.Sprintf("%s: %d/%d saved (%d new, %d existing, %d deferred, %d not found)",
		pl.Name, pl.Saved, pl.Total, pl.Downloaded, pl.Existing, pl.Deferred, pl.NotFound)
	if pl.Failed > 0 {
		line += fmt.Sprintf(", %d failed", pl.Failed)
		return styles.warn.Render("! " + line)
	}
	if pl.Saved == pl.Total {
		return styles.ok.Render("✓ " + line)
	}
	return "• " + line
}
