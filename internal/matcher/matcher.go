package matcher

import (
	"iter"
	"math"
	"strings"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/hbollon/go-edlib"
)

// TitleSimilarityFloor is the minimum Jaro-Winkler similarity between lower-cased titles.
const TitleSimilarityFloor = 0.80

// ForbiddenTerms mark recordings that are usually not the studio version.
var ForbiddenTerms = []string{
	"(live)",
	"music video",
	"karaoke version",
	"instrumental version",
}

// Score is the raw comparison between a track and a candidate.
type Score struct {
	TitleSimilarity  float64
	ArtistMatch      bool
	DurationDeltaPct float64
}

// RoundedDelta is the duration difference rounded to the nearest percent.
func (s Score) RoundedDelta() int {
	return int(math.Round(s.DurationDeltaPct))
}

// Policy holds the tunable parts of classification.
type Policy struct {
	DurationThreshold     float64
	AllowForbiddenWording bool
}

// PolicyFromConfig builds a [Policy] from the matching section of cfg.
func PolicyFromConfig(cfg shared.MatchingConfig) Policy {
	threshold := cfg.DurationThreshold
	if threshold <= 0 {
		threshold = shared.DefaultDurationThreshold
	}
	return Policy{DurationThreshold: threshold, AllowForbiddenWording: cfg.AllowForbiddenWording}
}

// Verdict is the outcome of applying a [Policy] to a single candidate.
type Verdict struct {
	Score        Score
	HardRejected bool
	Decision     models.Decision
}

// ScoreCandidate compares track against candidate.
func ScoreCandidate(track models.Track, candidate models.Candidate) Score {
	return Score{
		TitleSimilarity:  TitleSimilarity(track.Title, candidate.DisplayTitle),
		ArtistMatch:      ArtistMatch(track.PrimaryArtist(), candidate.Artists),
		DurationDeltaPct: DurationDelta(track.Duration, candidate.Duration),
	}
}

// TitleSimilarity returns the Jaro-Winkler similarity of the lower-cased titles in [0,1].
func TitleSimilarity(a, b string) float64 {
	sim, err := edlib.StringsSimilarity(strings.ToLower(a), strings.ToLower(b), edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(sim)
}

// ArtistMatch reports whether artists contains primary, ignoring case.
func ArtistMatch(primary string, artists []string) bool {
	if primary == "" {
		return false
	}
	for _, artist := range artists {
		if strings.EqualFold(artist, primary) {
			return true
		}
	}
	return false
}

// DurationDelta is the symmetric percentage difference between two durations.
// Two zero durations have no difference.
func DurationDelta(a, b float64) float64 {
	mean := (a + b) / 2
	if mean == 0 {
		return 0
	}
	return 100 * math.Abs(a-b) / mean
}

// HasForbiddenWording reports whether any of the labels contains a forbidden term.
func HasForbiddenWording(labels ...string) bool {
	for _, label := range labels {
		label = strings.ToLower(label)
		for _, term := range ForbiddenTerms {
			if strings.Contains(label, term) {
				return true
			}
		}
	}
	return false
}

// Evaluate applies the policy to one candidate.
func (p Policy) Evaluate(track models.Track, candidate models.Candidate) Verdict {
	score := ScoreCandidate(track, candidate)
	v := Verdict{Score: score}

	switch {
	case !score.ArtistMatch || score.TitleSimilarity < TitleSimilarityFloor:
		v.HardRejected = true
		v.Decision = models.Reject(models.NotFound())
	case !p.AllowForbiddenWording && HasForbiddenWording(candidate.DisplayTitle, candidate.RawLabel):
		v.Decision = models.Defer(candidate, models.ForbiddenWording())
	case float64(score.RoundedDelta()) > p.DurationThreshold:
		v.Decision = models.Defer(candidate, models.DurationMismatch(score.RoundedDelta(), p.DurationThreshold))
	default:
		v.Decision = models.Accept(candidate)
	}
	return v
}

// Classify returns the decision for the first candidate that is not hard-rejected,
// or a not-found rejection when candidates is exhausted. Candidates after the
// deciding one are never pulled from the sequence.
func Classify(track models.Track, candidates iter.Seq[models.Candidate], policy Policy) models.Decision {
	if candidates == nil {
		return models.Reject(models.NotFound())
	}
	for candidate := range candidates {
		if v := policy.Evaluate(track, candidate); !v.HardRejected {
			return v.Decision
		}
	}
	return models.Reject(models.NotFound())
}
