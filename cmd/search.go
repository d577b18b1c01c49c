package main

import (
	"context"

	"github.com/desertthunder/daunroda/internal/formatter"
	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search prints every candidate returned for a track with its scores, and the decision a run would take.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	track := models.Track{
		Title:    cmd.String("title"),
		Artists:  []string{cmd.String("artist")},
		Duration: cmd.Float("duration"),
	}

	engine := tasks.NewPlaylistEngine(nil, r.searchIndex(), nil, tasks.OptionsFromConfig(r.config))
	in, err := engine.Inspect(ctx, track)
	if err != nil {
		return err
	}

	r.writePlain("Query: %s\n\n", in.Query)
	if len(in.Candidates) == 0 {
		r.writePlain("No results\n")
	} else if err := r.write(formatter.ExportVerdicts(in.Verdicts, in.Candidates)); err != nil {
		return err
	}

	switch in.Decision.Kind {
	case models.Accepted:
		return r.writePlain("\nDecision: download %s\n", in.Decision.Candidate.WatchURL())
	case models.Deferred:
		return r.writePlain("\nDecision: ask (%s) about %s\n", in.Decision.Reason, in.Decision.Candidate.WatchURL())
	default:
		return r.writePlain("\nDecision: %s\n", in.Decision.Reason)
	}
}
