package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/services"
	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/desertthunder/daunroda/internal/tasks"
	"github.com/desertthunder/daunroda/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Download runs every configured (or given) playlist through search, download
// and review, then prints a summary.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("yes") && cmd.Bool("no-review") {
		return fmt.Errorf("%w: --yes and --no-review cannot be combined", shared.ErrInvalidArgument)
	}
	if w := cmd.Int("workers"); w > 0 {
		r.config.Download.Workers = min(w, shared.MaxWorkers)
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	ids, err := r.playlistIDs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	if err := r.ensureServices(ctx); err != nil {
		return err
	}

	history, closeHistory, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	engine := tasks.NewPlaylistEngine(r.catalog, r.index, r.downloader, tasks.OptionsFromConfig(r.config))
	if history != nil {
		engine.WithRecorder(history)
	}

	sink := &eventLog{log: r.logEvent}
	oracle, interactive := r.oracle(cmd)
	if interactive {
		oracle = sink.holdDuring(oracle)
	}

	events := make(chan tasks.Event, 256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range events {
			sink.write(e)
		}
	}()

	r.logger.Info("starting run", "playlists", len(ids), "root", r.config.Download.Root, "container", r.config.Download.Container)
	result, err := engine.Run(ctx, ids, oracle, events)
	close(events)
	<-done
	sink.release()

	if result != nil {
		r.writePlain("\n%s", ui.RenderSummary(result))
	}
	return err
}

// playlistIDs returns the IDs parsed from args, or the configured IDs when args is empty.
func (r *Runner) playlistIDs(args []string) ([]string, error) {
	if len(args) == 0 {
		if len(r.config.Playlists.IDs) == 0 {
			return nil, fmt.Errorf("%w: no playlists configured, add one with \"daunroda playlists add\"", shared.ErrMissingArgument)
		}
		return r.config.Playlists.IDs, nil
	}

	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := services.ParsePlaylistRef(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// oracle picks how deferred matches are resolved and reports whether it
// prompts on the terminal. Without a terminal on stdin there is nobody to ask,
// so they are skipped.
func (r *Runner) oracle(cmd *cli.Command) (tasks.Oracle, bool) {
	switch {
	case cmd.Bool("yes"):
		return tasks.StaticOracle(true), false
	case cmd.Bool("no-review"):
		return tasks.StaticOracle(false), false
	case !isTerminal(r.input):
		r.logger.Warn("stdin is not a terminal, skipping matches that need confirmation")
		return tasks.StaticOracle(false), false
	default:
		return ui.NewPrompt(r.input, r.output), true
	}
}

// eventLog writes run events through log. Once held, events are kept in order
// until release so nothing is printed while the review prompt owns the terminal.
type eventLog struct {
	log func(tasks.Event)

	mu      sync.Mutex
	held    bool
	pending []tasks.Event
}

func (l *eventLog) write(e tasks.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		l.pending = append(l.pending, e)
		return
	}
	l.log(e)
}

func (l *eventLog) hold() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
}

// release logs the held events and stops holding.
func (l *eventLog) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.pending {
		l.log(e)
	}
	l.held, l.pending = false, nil
}

// holdDuring wraps oracle so that events are held from its first question on.
func (l *eventLog) holdDuring(oracle tasks.Oracle) tasks.Oracle {
	var once sync.Once
	return tasks.OracleFunc(func(ctx context.Context, item models.ReviewItem) (bool, error) {
		once.Do(l.hold)
		return oracle.Confirm(ctx, item)
	})
}

func isTerminal(in any) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
