// package services defines the providers the download pipeline talks to
//
// Spotify (source catalog), YouTube Music via proxy (search index), yt-dlp (audio) and plain HTTP (cover art)
package services

import (
	"context"
	"io"
	"iter"

	"github.com/desertthunder/daunroda/internal/models"
)

// Catalog is the source of truth for playlists.
type Catalog interface {
	// FetchPlaylist returns the playlist with all of its tracks in catalog order.
	// Unknown IDs fail with [shared.ErrPlaylistNotFound].
	FetchPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// SearchIndex answers free-text queries with candidates in relevance order.
type SearchIndex interface {
	// Search may return an empty sequence.
	Search(ctx context.Context, query string) (iter.Seq[models.Candidate], error)
}

// MediaSource opens the audio stream for a search result.
type MediaSource interface {
	OpenAudio(ctx context.Context, externalID string) (io.ReadCloser, error)
}

// ArtworkSource fetches cover art bytes.
type ArtworkSource interface {
	OpenArtwork(ctx context.Context, url string) (io.ReadCloser, error)
}
