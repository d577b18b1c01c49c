// Package matcher decides whether a YouTube Music search result is the same recording as a Spotify track.
//
// [ScoreCandidate] compares one track against one candidate. [Classify] walks the
// candidates of a search in provider order and returns the first verdict that
// is not a hard rejection:
//
//  1. hard reject when the primary artist is not credited (case-insensitive, exact)
//     or the title similarity is below [TitleSimilarityFloor]
//  2. defer when the label carries forbidden wording such as "(live)" and the
//     policy does not allow it
//  3. defer when the rounded duration difference exceeds the threshold
//  4. accept otherwise
//
// A track whose candidates are all hard-rejected is rejected as not found.
package matcher
