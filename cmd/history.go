package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/daunroda/internal/formatter"
	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/repositories"
	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/urfave/cli/v3"
)

var outcomeStatuses = []models.OutcomeStatus{
	models.StatusDownloaded,
	models.StatusExisting,
	models.StatusNotFound,
	models.StatusDeferred,
	models.StatusApproved,
	models.StatusDeclined,
	models.StatusFailed,
}

// HistoryList prints the most recent runs.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, closeHistory, err := r.requireHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	runs, err := history.ListRuns(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return r.writePlain("No runs recorded\n")
	}
	return r.write(formatter.ExportRuns(runs))
}

// HistoryShow prints the outcomes of one run as a list or as CSV.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	status := models.OutcomeStatus(cmd.String("status"))
	if status != "" && !slices.Contains(outcomeStatuses, status) {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	history, closeHistory, err := r.requireHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	runID, err := history.ResolveRunID(cmd.Args().First())
	if err != nil {
		return err
	}

	outcomes, err := history.Outcomes(ctx, runID, status)
	if err != nil {
		return err
	}

	if cmd.Bool("csv") {
		data, err := formatter.ExportOutcomesCSV(outcomes)
		if err != nil {
			return err
		}
		return r.write(data)
	}

	run, err := history.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	r.write(formatter.ExportRuns([]models.Run{*run}))
	r.writePlain("\n")

	for _, o := range outcomes {
		line := fmt.Sprintf("[%s] %s / %s", o.Status, o.Playlist, o.TrackName)
		if o.Detail != "" {
			line += ": " + o.Detail
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) requireHistory() (*repositories.HistoryRepository, func(), error) {
	history, closeHistory, err := r.openHistory()
	if err != nil {
		return nil, nil, err
	}
	if history == nil {
		return nil, nil, fmt.Errorf("%w: set database.path to record run history", shared.ErrMissingConfig)
	}
	return history, closeHistory, nil
}
