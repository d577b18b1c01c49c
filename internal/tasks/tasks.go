package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/desertthunder/daunroda/internal/download"
	"github.com/desertthunder/daunroda/internal/formatter"
	"github.com/desertthunder/daunroda/internal/matcher"
	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/services"
	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/gofrs/flock"
	"golang.org/x/time/rate"
)

// LockFile is created in the download root while a run holds it.
const LockFile = ".daunroda.lock"

// Downloader runs one download job to completion.
type Downloader interface {
	Download(ctx context.Context, job models.DownloadJob) download.Result
}

// Recorder persists run history.
type Recorder interface {
	StartRun(ctx context.Context, run models.Run) error
	RecordOutcome(ctx context.Context, outcome models.Outcome) error
	FinishRun(ctx context.Context, run models.Run) error
}

type nopRecorder struct{}

func (nopRecorder) StartRun(context.Context, models.Run) error {
	return nil
}

func (nopRecorder) RecordOutcome(context.Context, models.Outcome) error {
	return nil
}

func (nopRecorder) FinishRun(context.Context, models.Run) error {
	return nil
}

// Options configure a [PlaylistEngine].
type Options struct {
	Root       string         // download root, created if missing
	Container  string         // mp3 or flac, also the file extension
	Workers    int            // concurrent downloads per playlist
	SearchRate float64        // searches per second, <= 0 disables limiting
	Policy     matcher.Policy // classification policy
}

// OptionsFromConfig builds engine options from a normalized config.
func OptionsFromConfig(cfg *shared.Config) Options {
	return Options{
		Root:       cfg.Download.Root,
		Container:  cfg.Download.Container,
		Workers:    cfg.Download.Workers,
		SearchRate: cfg.Matching.SearchRate,
		Policy:     matcher.PolicyFromConfig(cfg.Matching),
	}
}

// PlaylistResult summarizes the automatic pass over one playlist.
type PlaylistResult struct {
	ID         string
	Name       string
	Total      int // tracks in the playlist
	Saved      int // manifest entries after the automatic pass
	Downloaded int // new files written
	Existing   int // files that were already present
	NotFound   int
	Deferred   int
	Failed     int // search or download failures
	Elapsed    time.Duration
	Err        error // set when the playlist could not be fetched
}

// RunResult contains all data from a full run.
type RunResult struct {
	RunID     string
	Playlists []PlaylistResult
	Reviewed  int // deferred items resolved by the drain
	Approved  int // approved and downloaded
	Declined  int
	Failed    int // approved but failed to download
}

// Downloaded is the number of new files written across the run, including approved ones.
func (r *RunResult) Downloaded() int {
	n := r.Approved
	for _, p := range r.Playlists {
		n += p.Downloaded
	}
	return n
}

// NotFound is the number of tracks without any acceptable candidate.
func (r *RunResult) NotFound() int {
	var n int
	for _, p := range r.Playlists {
		n += p.NotFound
	}
	return n
}

// FailedTotal counts search and download failures across the run.
func (r *RunResult) FailedTotal() int {
	n := r.Failed
	for _, p := range r.Playlists {
		n += p.Failed
	}
	return n
}

// PlaylistEngine runs playlists through search, classification, download and manifest writing.
type PlaylistEngine struct {
	catalog    services.Catalog
	index      services.SearchIndex
	downloader Downloader
	recorder   Recorder
	opts       Options
	limiter    *rate.Limiter
	queue      *ReviewQueue
	manifests  *formatter.Manifests
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided services.
func NewPlaylistEngine(catalog services.Catalog, index services.SearchIndex, downloader Downloader, opts Options) *PlaylistEngine {
	limit := rate.Inf
	if opts.SearchRate > 0 {
		limit = rate.Limit(opts.SearchRate)
	}
	if opts.Policy.DurationThreshold <= 0 {
		opts.Policy.DurationThreshold = shared.DefaultDurationThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = shared.DefaultWorkers
	}

	return &PlaylistEngine{
		catalog:    catalog,
		index:      index,
		downloader: downloader,
		recorder:   nopRecorder{},
		opts:       opts,
		limiter:    rate.NewLimiter(limit, 1),
		queue:      NewReviewQueue(),
		manifests:  formatter.NewManifests(opts.Root),
	}
}

// WithRecorder sets the history recorder. A nil recorder disables history.
func (e *PlaylistEngine) WithRecorder(r Recorder) *PlaylistEngine {
	if r == nil {
		r = nopRecorder{}
	}
	e.recorder = r
	return e
}

// Job builds the download job for track in playlist. The destination is
// <root>/<playlist>/<artist - title>.<container>, each segment sanitized and
// the file name trimmed to fit the 255 byte limit with its extension.
func (e *PlaylistEngine) Job(playlist string, track models.Track) models.DownloadJob {
	rel := filepath.Join(
		shared.SanitizeFilename(playlist),
		shared.FileName(track.Name(), e.opts.Container),
	)
	return models.DownloadJob{
		Track:        track,
		Playlist:     playlist,
		Destination:  filepath.Join(e.opts.Root, rel),
		RelativePath: rel,
	}
}

// Run processes the given playlists in order, then drains the review queue once against oracle.
//
// Only an invalid container, an unusable or already locked download root or a
// cancelled context fail the run. Per playlist, per track and per job failures are reported as
// events and counted in the result.
func (e *PlaylistEngine) Run(ctx context.Context, ids []string, oracle Oracle, events chan<- Event) (*RunResult, error) {
	if e.catalog == nil || e.index == nil || e.downloader == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrServiceUnavailable)
	}
	if e.opts.Container != "mp3" && e.opts.Container != "flac" {
		return nil, fmt.Errorf("%w: unsupported container %q", shared.ErrInvalidConfig, e.opts.Container)
	}
	if err := os.MkdirAll(e.opts.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download root: %w", err)
	}

	lock := flock.New(filepath.Join(e.opts.Root, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock download root: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunInProgress, e.opts.Root)
	}
	defer lock.Unlock()

	run := models.Run{ID: shared.GenerateID(), StartedAt: time.Now().UTC(), Playlists: len(ids)}
	e.report(events, e.recorder.StartRun(ctx, run))

	result := &RunResult{RunID: run.ID}
	defer func() {
		run.FinishedAt = time.Now().UTC()
		run.Downloaded = result.Downloaded()
		run.NotFound = result.NotFound()
		run.Failed = result.FailedTotal()
		e.report(events, e.recorder.FinishRun(context.WithoutCancel(ctx), run))
	}()

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sendEvent(events, fetchingPlaylistEvent(i+1, len(ids), id))
		result.Playlists = append(result.Playlists, e.runPlaylist(ctx, run.ID, id, events))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := e.drain(ctx, run.ID, oracle, result, events); err != nil {
		if errors.Is(err, shared.ErrReviewAborted) {
			return result, nil
		}
		return result, err
	}
	return result, nil
}

func (e *PlaylistEngine) runPlaylist(ctx context.Context, runID, id string, events chan<- Event) PlaylistResult {
	start := time.Now()
	res := PlaylistResult{ID: id}

	pl, err := e.catalog.FetchPlaylist(ctx, id)
	if err != nil {
		res.Err = err
		sendEvent(events, playlistFailedEvent(id, err))
		return res
	}

	res.Name = pl.Name
	res.Total = len(pl.Tracks)
	sendEvent(events, foundPlaylistEvent(pl))

	jobs := make([]models.DownloadJob, len(pl.Tracks))
	paths := make([]string, len(pl.Tracks))
	for i, track := range pl.Tracks {
		jobs[i] = e.Job(pl.Name, track)
		paths[i] = jobs[i].RelativePath
	}
	e.manifests.Reset(pl.Name, paths)

	present := make([]bool, len(pl.Tracks))
	submitted := make([]bool, len(pl.Tracks))

	finished := 0
	pool := download.NewPool(ctx, e.opts.Workers, e.downloader.Download, func(r download.Result) {
		finished++
		sendEvent(events, downloadedEvent(finished, r))
	})

	total := len(pl.Tracks)
	for i, track := range pl.Tracks {
		job := jobs[i]

		exists, err := shared.PathExists(job.Destination)
		if err != nil {
			res.Failed++
			sendEvent(events, statFailedEvent(i+1, total, pl.Name, job, err))
			e.record(ctx, events, runID, job, models.StatusFailed, err.Error())
			continue
		}
		if exists {
			present[i] = true
			res.Existing++
			sendEvent(events, existingTrackEvent(i+1, total, pl.Name, job))
			e.record(ctx, events, runID, job, models.StatusExisting, "")
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		sendEvent(events, searchTrackEvent(i+1, total, pl.Name, track))
		candidates, err := e.index.Search(ctx, track.Name())
		if err != nil {
			res.Failed++
			sendEvent(events, searchFailedEvent(i+1, total, pl.Name, track, err))
			e.record(ctx, events, runID, job, models.StatusFailed, err.Error())
			continue
		}

		decision := matcher.Classify(track, candidates, e.opts.Policy)
		sendEvent(events, decisionEvent(i+1, total, pl.Name, track, decision))

		switch decision.Kind {
		case models.Accepted:
			job.Candidate = decision.Candidate
			jobs[i] = job
			submitted[i] = true
			pool.Submit(job)
		case models.Deferred:
			job.Candidate = decision.Candidate
			jobs[i] = job
			res.Deferred++
			e.queue.Enqueue(models.ReviewItem{Job: job, Reason: decision.Reason})
			e.record(ctx, events, runID, job, models.StatusDeferred, decision.Reason.String())
		default:
			res.NotFound++
			e.record(ctx, events, runID, job, models.StatusNotFound, decision.Reason.String())
		}
	}

	done := make(map[string]bool)
	for _, r := range pool.Wait() {
		if r.Err != nil {
			res.Failed++
			e.record(ctx, events, runID, r.Job, models.StatusFailed, r.Err.Error())
			continue
		}
		done[r.Job.Destination] = true
		if r.Skipped {
			res.Existing++
			e.record(ctx, events, runID, r.Job, models.StatusExisting, "")
		} else {
			res.Downloaded++
			e.record(ctx, events, runID, r.Job, models.StatusDownloaded, "")
		}
	}

	for i, job := range jobs {
		if present[i] || (submitted[i] && done[job.Destination]) {
			e.manifests.Mark(pl.Name, job.RelativePath)
		}
	}
	e.flush(pl.Name, events)

	res.Saved = len(e.manifests.Entries(pl.Name))
	res.Elapsed = time.Since(start)
	sendEvent(events, summaryEvent(res))
	return res
}

// drain resolves the review queue. Approved items are downloaded sequentially
// and their playlist manifest is rewritten, in track order, after each success.
func (e *PlaylistEngine) drain(ctx context.Context, runID string, oracle Oracle, result *RunResult, events chan<- Event) error {
	total := e.queue.Len()
	if total == 0 {
		return nil
	}
	sendEvent(events, reviewStartEvent(total))

	return e.queue.Drain(ctx, oracle, func(ctx context.Context, step int, item models.ReviewItem, status models.OutcomeStatus) {
		result.Reviewed++

		var err error
		switch status {
		case models.StatusDeclined:
			result.Declined++
		case models.StatusApproved:
			r := e.downloader.Download(ctx, item.Job)
			if r.Err != nil {
				err = r.Err
				result.Failed++
				status = models.StatusFailed
				break
			}
			result.Approved++
			e.manifests.Mark(item.Job.Playlist, item.Job.RelativePath)
			e.flush(item.Job.Playlist, events)
		case models.StatusExisting:
			if e.manifests.Mark(item.Job.Playlist, item.Job.RelativePath) > 0 {
				e.flush(item.Job.Playlist, events)
			}
		}

		detail := item.Reason.String()
		if err != nil {
			detail = err.Error()
		}
		sendEvent(events, reviewOutcomeEvent(step, total, item, status, err))
		e.record(ctx, events, runID, item.Job, status, detail)
	})
}

func (e *PlaylistEngine) flush(playlist string, events chan<- Event) {
	if err := e.manifests.Flush(playlist); err != nil {
		sendEvent(events, manifestFailedEvent(playlist, err))
	}
}

// Inspection is the full classification of one search.
type Inspection struct {
	Query      string
	Candidates []models.Candidate
	Verdicts   []matcher.Verdict
	Decision   models.Decision
}

// Inspect searches for track and evaluates every candidate returned, not
// only up to the first decision. It does not download anything.
func (e *PlaylistEngine) Inspect(ctx context.Context, track models.Track) (*Inspection, error) {
	if e.index == nil {
		return nil, fmt.Errorf("%w: search index not initialized", shared.ErrServiceUnavailable)
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	seq, err := e.index.Search(ctx, track.Name())
	if err != nil {
		return nil, err
	}

	in := &Inspection{Query: track.Name(), Candidates: slices.Collect(seq)}
	for _, c := range in.Candidates {
		in.Verdicts = append(in.Verdicts, e.opts.Policy.Evaluate(track, c))
	}
	in.Decision = matcher.Classify(track, slices.Values(in.Candidates), e.opts.Policy)
	return in, nil
}

// Pending returns the deferred items not yet drained.
func (e *PlaylistEngine) Pending() []models.ReviewItem {
	return e.queue.Items()
}

func (e *PlaylistEngine) record(ctx context.Context, events chan<- Event, runID string, job models.DownloadJob, status models.OutcomeStatus, detail string) {
	e.report(events, e.recorder.RecordOutcome(context.WithoutCancel(ctx), models.Outcome{
		RunID:       runID,
		Playlist:    job.Playlist,
		TrackID:     job.Track.ID,
		TrackName:   job.Track.Name(),
		Status:      status,
		CandidateID: job.Candidate.ExternalID,
		Detail:      detail,
		RecordedAt:  time.Now().UTC(),
	}))
}

func (e *PlaylistEngine) report(events chan<- Event, err error) {
	if err != nil {
		sendEvent(events, recorderFailedEvent(err))
	}
}
