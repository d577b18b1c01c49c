// Package models defines the domain records shared by the matcher, the download pipeline and the run history.
//
// Catalog records:
//   - [Track] : immutable source-of-truth metadata read from Spotify
//   - [Playlist] : a Spotify playlist and its ordered tracks
//   - [Candidate] : one YouTube Music search result
//
// Pipeline records:
//   - [Decision] : the classifier verdict for one track (accepted, rejected or deferred with a [Reason])
//   - [DownloadJob] : an accepted match bound to its destination file
//
// History records:
//   - [Run] and [Outcome] : rows persisted by the optional sqlite run history
package models
