package ui

import (
	"strings"
	"testing"

	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/desertthunder/daunroda/internal/tasks"
)

func TestRenderSummary(t *testing.T) {
	if RenderSummary(nil) != "" {
		t.Error("expected empty summary for nil result")
	}

	r := &tasks.RunResult{
		Playlists: []tasks.PlaylistResult{
			{ID: "pl1", Name: "Road Trip", Total: 4, Saved: 3, Downloaded: 2, Existing: 1, Deferred: 1},
			{ID: "missing", Err: shared.ErrPlaylistNotFound},
			{ID: "pl2", Name: "Focus", Total: 2, Saved: 1, Downloaded: 1, Failed: 1},
		},
		Reviewed: 1,
		Approved: 1,
	}

	out := RenderSummary(r)
	for _, want := range []string{
		"Road Trip: 3/4 saved (2 new, 1 existing, 1 deferred, 0 not found)",
		"missing: playlist not found",
		"Focus: 1/2 saved",
		"1 failed",
		"Reviewed 1: 1 approved, 0 declined",
		"Downloaded 4, not found 0, failed 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, out)
		}
	}
}
