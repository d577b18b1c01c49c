package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/daunroda/internal/download"
	"github.com/desertthunder/daunroda/internal/models"
)

// Level is the severity of an [Event].
type Level int

const (
	LevelDebug Level = iota // verbose trace, opt-in
	LevelInfo               // per-playlist progress and summaries
	LevelError              // non-fatal per-track or per-job failure
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	SearchTracks
	DownloadTracks
	WriteManifest
	Review
	Summary
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case SearchTracks:
		return "search_tracks"
	case DownloadTracks:
		return "download_tracks"
	case WriteManifest:
		return "write_manifest"
	case Review:
		return "review"
	case Summary:
		return "summary"
	default:
		return ""
	}
}

// Event is a progress notification emitted during a run.
type Event struct {
	Level    Level
	Phase    Phase
	Playlist string // playlist name, or id before it is fetched
	Step     int    // current step within the phase, 0 when not applicable
	Total    int    // total steps in the phase, 0 when unknown
	Message  string
	Err      error
}

func fetchingPlaylistEvent(step, total int, id string) Event {
	return Event{
		Level:    LevelInfo,
		Phase:    FetchPlaylist,
		Playlist: id,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func playlistFailedEvent(id string, err error) Event {
	return Event{
		Level:    LevelError,
		Phase:    FetchPlaylist,
		Playlist: id,
		Message:  fmt.Sprintf("Skipping playlist %s", id),
		Err:      err,
	}
}

func foundPlaylistEvent(pl *models.Playlist) Event {
	return Event{
		Level:    LevelInfo,
		Phase:    FetchPlaylist,
		Playlist: pl.Name,
		Total:    len(pl.Tracks),
		Message:  fmt.Sprintf("Found playlist: %s (%d tracks)", pl.Name, len(pl.Tracks)),
	}
}

func existingTrackEvent(step, total int, pl string, job models.DownloadJob) Event {
	return Event{
		Level:    LevelDebug,
		Phase:    SearchTracks,
		Playlist: pl,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] %s already exists, skipping", step, total, job.RelativePath),
	}
}

func statFailedEvent(step, total int, pl string, job models.DownloadJob, err error) Event {
	return Event{
		Level:    LevelError,
		Phase:    SearchTracks,
		Playlist: pl,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Cannot check %s", step, total, job.RelativePath),
		Err:      err,
	}
}

func searchTrackEvent(step, total int, pl string, tr models.Track) Event {
	return Event{
		Level:    LevelDebug,
		Phase:    SearchTracks,
		Playlist: pl,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Searching %s", step, total, tr.Name()),
	}
}

func searchFailedEvent(step, total int, pl string, tr models.Track, err error) Event {
	return Event{
		Level:    LevelError,
		Phase:    SearchTracks,
		Playlist: pl,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Search failed for %s", step, total, tr.Name()),
		Err:      err,
	}
}

func decisionEvent(step, total int, pl string, tr models.Track, d models.Decision) Event {
	var msg string
	switch d.Kind {
	case models.Accepted:
		msg = fmt.Sprintf("[%d/%d] %s matched %s", step, total, tr.Name(), d.Candidate.WatchURL())
	case models.Deferred:
		msg = fmt.Sprintf("[%d/%d] %s deferred for review: %s", step, total, tr.Name(), d.Reason)
	default:
		msg = fmt.Sprintf("[%d/%d] %s not found on YouTube", step, total, tr.Name())
	}
	return Event{
		Level:    LevelDebug,
		Phase:    SearchTracks,
		Playlist: pl,
		Step:     step,
		Total:    total,
		Message:  msg,
	}
}

func downloadedEvent(step int, res download.Result) Event {
	if res.Err != nil {
		return Event{
			Level:    LevelError,
			Phase:    DownloadTracks,
			Playlist: res.Job.Playlist,
			Step:     step,
			Message:  fmt.Sprintf("✗ %s", res.Job.Track.Name()),
			Err:      res.Err,
		}
	}
	return Event{
		Level:    LevelDebug,
		Phase:    DownloadTracks,
		Playlist: res.Job.Playlist,
		Step:     step,
		Message:  fmt.Sprintf("✓ %s", res.Job.RelativePath),
	}
}

func manifestFailedEvent(pl string, err error) Event {
	return Event{
		Level:    LevelError,
		Phase:    WriteManifest,
		Playlist: pl,
		Message:  fmt.Sprintf("Failed to write manifest for %s", pl),
		Err:      err,
	}
}

func summaryEvent(r PlaylistResult) Event {
	var msg string
	elapsed := r.Elapsed.Round(time.Millisecond)
	if r.Saved == r.Total {
		msg = fmt.Sprintf("Found and downloaded all songs (%d) from the %q playlist in %s!", r.Total, r.Name, elapsed)
	} else {
		msg = fmt.Sprintf("Found and downloaded %d/%d songs from the %q playlist in %s!", r.Saved, r.Total, r.Name, elapsed)
	}
	return Event{
		Level:    LevelInfo,
		Phase:    Summary,
		Playlist: r.Name,
		Step:     r.Saved,
		Total:    r.Total,
		Message:  msg,
	}
}

func reviewStartEvent(total int) Event {
	return Event{
		Level:   LevelInfo,
		Phase:   Review,
		Total:   total,
		Message: fmt.Sprintf("%d songs need a decision", total),
	}
}

func reviewOutcomeEvent(step, total int, item models.ReviewItem, status models.OutcomeStatus, err error) Event {
	e := Event{
		Level:    LevelInfo,
		Phase:    Review,
		Playlist: item.Job.Playlist,
		Step:     step,
		Total:    total,
		Err:      err,
	}
	switch {
	case err != nil:
		e.Level = LevelError
		e.Message = fmt.Sprintf("[%d/%d] ✗ %s", step, total, item.Job.Track.Name())
	case status == models.StatusExisting:
		e.Level = LevelDebug
		e.Message = fmt.Sprintf("[%d/%d] %s already exists, not asking", step, total, item.Job.RelativePath)
	case status == models.StatusDeclined:
		e.Level = LevelDebug
		e.Message = fmt.Sprintf("[%d/%d] Declined %s", step, total, item.Job.Track.Name())
	default:
		e.Message = fmt.Sprintf("[%d/%d] ✓ %s", step, total, item.Job.RelativePath)
	}
	return e
}

func recorderFailedEvent(err error) Event {
	return Event{
		Level:   LevelDebug,
		Phase:   Summary,
		Message: "Failed to record run history",
		Err:     err,
	}
}

// sendEvent sends an event through the channel without blocking.
func sendEvent(events chan<- Event, e Event) {
	if events == nil {
		return
	}
	select {
	case events <- e:
	default:
	}
}
