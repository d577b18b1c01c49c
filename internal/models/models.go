// package models defines the data model for playlist reconciliation
package models

import (
	"fmt"
	"strconv"
	"time"
)

// Track is a source catalog entry. Artists[0] is the primary artist.
type Track struct {
	ID           string
	Title        string
	Artists      []string
	Album        string
	AlbumArtists []string
	Duration     float64 // seconds
	CoverURL     string
}

// PrimaryArtist returns the first credited artist or an empty string.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Name is the "<primary artist> - <title>" form used both as the search query and the file stem.
func (t Track) Name() string {
	return t.PrimaryArtist() + " - " + t.Title
}

// Playlist is a source playlist with its tracks in catalog order.
type Playlist struct {
	ID          string
	Name        string
	Description string
	CoverURL    string
	URL         string
	Tracks      []Track
}

// Candidate is a search result from the YouTube Music index.
type Candidate struct {
	ExternalID   string
	DisplayTitle string
	Artists      []string
	Duration     float64 // seconds, 0 when unknown
	RawLabel     string
}

// WatchURL links to the candidate on YouTube Music.
func (c Candidate) WatchURL() string {
	return "https://music.youtube.com/watch?v=" + c.ExternalID
}

// Label returns the text checked for forbidden wording.
func (c Candidate) Label() string {
	if c.RawLabel != "" {
		return c.RawLabel
	}
	return c.DisplayTitle
}

type DecisionKind int

const (
	Rejected DecisionKind = iota
	Accepted
	Deferred
)

func (k DecisionKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Deferred:
		return "deferred"
	default:
		return "rejected"
	}
}

type ReasonKind int

const (
	ReasonNone ReasonKind = iota
	ReasonNotFound
	ReasonForbiddenWording
	ReasonDurationMismatch
)

// Reason explains a rejected or deferred decision. Percent and Threshold are
// only set for [ReasonDurationMismatch].
type Reason struct {
	Kind      ReasonKind
	Percent   int
	Threshold float64
}

func NotFound() Reason {
	return Reason{Kind: ReasonNotFound}
}

func ForbiddenWording() Reason {
	return Reason{Kind: ReasonForbiddenWording}
}

func DurationMismatch(percent int, threshold float64) Reason {
	return Reason{Kind: ReasonDurationMismatch, Percent: percent, Threshold: threshold}
}

func (r Reason) String() string {
	switch r.Kind {
	case ReasonNotFound:
		return "no matching result"
	case ReasonForbiddenWording:
		return "the name on YouTube contains forbidden wording"
	case ReasonDurationMismatch:
		return fmt.Sprintf("a big difference in duration (%d%% > %s%%)", r.Percent, strconv.FormatFloat(r.Threshold, 'f', -1, 64))
	default:
		return ""
	}
}

// Decision is the classifier verdict for one track. Candidate is the zero value when Kind is [Rejected].
type Decision struct {
	Kind      DecisionKind
	Candidate Candidate
	Reason    Reason
}

func Accept(c Candidate) Decision {
	return Decision{Kind: Accepted, Candidate: c}
}

func Reject(r Reason) Decision {
	return Decision{Kind: Rejected, Reason: r}
}

func Defer(c Candidate, r Reason) Decision {
	return Decision{Kind: Deferred, Candidate: c, Reason: r}
}

// DownloadJob binds an accepted candidate to the file it will produce.
// RelativePath is Destination relative to the download root and is what manifests list.
type DownloadJob struct {
	Track        Track
	Candidate    Candidate
	Playlist     string
	Destination  string
	RelativePath string
}

// OutcomeStatus is the terminal state recorded for a track in the run history.
type OutcomeStatus string

const (
	StatusDownloaded OutcomeStatus = "downloaded"
	StatusExisting   OutcomeStatus = "existing"
	StatusNotFound   OutcomeStatus = "not_found"
	StatusDeferred   OutcomeStatus = "deferred"
	StatusApproved   OutcomeStatus = "approved"
	StatusDeclined   OutcomeStatus = "declined"
	StatusFailed     OutcomeStatus = "failed"
)

// Run is one invocation of the download pipeline.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Playlists  int
	Downloaded int
	NotFound   int
	Failed     int
}

// Outcome is the recorded result for a single track within a run.
type Outcome struct {
	RunID       string
	Playlist    string
	TrackID     string
	TrackName   string
	Status      OutcomeStatus
	CandidateID string
	Detail      string
	RecordedAt  time.Time
}

// ReviewItem is a deferred match awaiting a yes/no answer.
type ReviewItem struct {
	Job    DownloadJob
	Reason Reason
}

// Prompt is the question asked for a deferred match.
func (r ReviewItem) Prompt() string {
	return fmt.Sprintf("Found %s on YouTube (named %s) but it was rejected because of %s. Do you want to download this anyway?",
		r.Job.Track.Name(), r.Job.Candidate.DisplayTitle, r.Reason)
}
