// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Images  []SpotifyImage  `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil
// for items that are no longer available.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracks is one page of playlist items.
type SpotifyPlaylistTracks struct {
	Items []SpotifyPlaylistTrack `json:"items"`
	Total int                    `json:"total"`
	Next  *string                `json:"next"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist with the first page of its tracks.
type SpotifyPlaylist struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Images       []SpotifyImage        `json:"images"`
	ExternalURLs externalURLs          `json:"external_urls"`
	Tracks       SpotifyPlaylistTracks `json:"tracks"`
}

// SpotifyService implements [Catalog] using the client credentials grant.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*spotifyOptions)

type spotifyOptions struct {
	baseURL  string
	tokenURL string
}

// WithSpotifyEndpoints overrides the API and token URLs.
func WithSpotifyEndpoints(baseURL, tokenURL string) SpotifyOption {
	return func(o *spotifyOptions) {
		o.baseURL = baseURL
		o.tokenURL = tokenURL
	}
}

// NewSpotifyService creates a Spotify catalog client. Tokens are fetched lazily and refreshed by [clientcredentials].
func NewSpotifyService(ctx context.Context, creds shared.SpotifyConfig, opts ...SpotifyOption) (*SpotifyService, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	o := spotifyOptions{baseURL: spotifyBaseURL, tokenURL: spotifyTokenURL}
	for _, opt := range opts {
		opt(&o)
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     o.tokenURL,
	}

	return &SpotifyService{
		baseURL:    strings.TrimRight(o.baseURL, "/"),
		httpClient: config.Client(ctx),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET against endpoint, which may be a path or an absolute paging URL.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrPlaylistNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Playlist retrieves a playlist by ID, including only its first page of tracks.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, "/playlists/"+url.PathEscape(playlistID), &playlist); err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
	}
	return &playlist, nil
}

// FetchPlaylist retrieves a playlist and follows track pagination until exhausted.
// Unavailable and local items are skipped.
func (s *SpotifyService) FetchPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		URL:         sp.ExternalURLs.Spotify,
		Tracks:      make([]models.Track, 0, sp.Tracks.Total),
	}
	if len(sp.Images) > 0 {
		playlist.CoverURL = sp.Images[0].URL
	}

	page := sp.Tracks
	for {
		for _, item := range page.Items {
			if item.Track == nil || item.Track.IsLocal || item.Track.ID == "" {
				continue
			}
			playlist.Tracks = append(playlist.Tracks, convertSpotifyTrack(*item.Track))
		}

		if page.Next == nil || *page.Next == "" {
			break
		}

		next := SpotifyPlaylistTracks{}
		if err := s.doRequest(ctx, *page.Next, &next); err != nil {
			return nil, fmt.Errorf("playlist %s tracks: %w", playlistID, err)
		}
		page = next
	}

	return playlist, nil
}

func convertSpotifyTrack(st SpotifyTrack) models.Track {
	track := models.Track{
		ID:           st.ID,
		Title:        st.Name,
		Artists:      artistNames(st.Artists),
		Album:        st.Album.Name,
		AlbumArtists: artistNames(st.Album.Artists),
		Duration:     float64(st.DurationMS) / 1000,
	}
	if len(st.Album.Images) > 0 {
		track.CoverURL = st.Album.Images[0].URL
	}
	return track
}

func artistNames(artists []SpotifyArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

var (
	playlistURLPattern = regexp.MustCompile(`^https?://open\.spotify\.com/(?:[\w-]+/)?playlist/([A-Za-z0-9]+)`)
	playlistURIPattern = regexp.MustCompile(`^spotify:playlist:([A-Za-z0-9]+)$`)
	playlistIDPattern  = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)
)

// ParsePlaylistRef extracts a playlist ID from an open.spotify.com link, a spotify:playlist: URI or a bare ID.
func ParsePlaylistRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: playlist link, URI or ID", shared.ErrMissingArgument)
	}

	if m := playlistURLPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if m := playlistURIPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if playlistIDPattern.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("%w: %q is not a Spotify playlist link, URI or ID", shared.ErrInvalidArgument, ref)
}
