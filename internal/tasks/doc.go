// Package tasks drives a download run: it fetches each playlist, classifies
// search results per track, downloads accepted matches and keeps the playlist
// manifests current.
//
// # Run
//
// [PlaylistEngine.Run] processes playlists strictly one after another:
//
//  1. Fetch the playlist from the [services.Catalog]. An unknown playlist is
//     reported and skipped.
//  2. For each track, in order, skip the search when the destination file
//     already exists. Otherwise wait on the search rate limiter, query the
//     [services.SearchIndex] with "<artist> - <title>" and classify the results
//     with [matcher.Classify].
//  3. Accepted matches are submitted to a bounded [download.Pool]. Deferred
//     matches go to the [ReviewQueue]. Rejected tracks are counted as not found.
//  4. Once the pool is idle the manifest is written with every track that has
//     a file, in playlist order.
//
// After every playlist is done the review queue is drained once against an
// [Oracle]. Approved items are downloaded one at a time and the manifest of
// their playlist is rewritten right away.
//
// # Events
//
// Progress is reported as [Event] values on a caller-owned channel. Sends
// never block, so a slow or absent reader drops events instead of stalling
// the run.
//
// # History
//
// A [Recorder] receives the run and one outcome per track. Recorder errors
// are reported as debug events and otherwise ignored.
package tasks
