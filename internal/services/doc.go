// Package services talks to the outside world: the Spotify playlist catalog,
// the YouTube Music search proxy and the media sources used by the downloader.
//
// # Catalog
//
// [SpotifyService] implements [Catalog] using the client credentials flow.
// The [clientcredentials.Config] token source refreshes the app token on its own,
// so no user authorization is ever needed. Playlist pages are followed until
// the next link is empty.
//
// # Search Index
//
// [YouTubeService] implements [SearchIndex] against the HTTP proxy wrapping
// ytmusicapi. Results come back as a lazy sequence of [models.Candidate] in
// relevance order; consumers stop pulling once they have decided.
//
// # Media
//
// [YTDLPService] streams the best audio format for a video through yt-dlp and
// [HTTPArtwork] fetches cover images.
//
// # Error Handling
//
// Services wrap errors from the shared package:
//   - [shared.ErrAPIRequest] : the remote returned a non-2xx status
//   - [shared.ErrPlaylistNotFound] : the playlist ID does not exist
//   - [shared.ErrMissingCredentials] : client ID or secret is empty
package services
