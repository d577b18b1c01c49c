package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/daunroda/internal/shared"
)

// newSpotifyServer serves a token endpoint plus the given API handler.
func newSpotifyServer(t *testing.T, api http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to token endpoint, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test_token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		api(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestSpotify(t *testing.T, server *httptest.Server) *SpotifyService {
	t.Helper()
	creds := shared.SpotifyConfig{ClientID: "test_client_id", ClientSecret: "test_client_secret"}
	svc, err := NewSpotifyService(context.Background(), creds, WithSpotifyEndpoints(server.URL+"/v1", server.URL+"/token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return svc
}

func spotifyTrackJSON(id, name, artist string, durationMS int) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"duration_ms": durationMS,
		"artists":     []map[string]any{{"id": "a1", "name": artist}, {"id": "a2", "name": "Featured"}},
		"album": map[string]any{
			"id":      "al1",
			"name":    "Album",
			"artists": []map[string]any{{"id": "a1", "name": artist}},
			"images":  []map[string]any{{"url": "https://i.scdn.co/image/cover", "height": 640, "width": 640}},
		},
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(context.Background(), shared.SpotifyConfig{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Name", func(t *testing.T) {
			svc, err := NewSpotifyService(context.Background(), shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", svc.Name())
			}
		})
	})

	t.Run("FetchPlaylist", func(t *testing.T) {
		var server *httptest.Server
		server = newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/v1/playlists/PL1":
				next := fmt.Sprintf("%s/v1/playlists/PL1/tracks?offset=2&limit=2", server.URL)
				json.NewEncoder(w).Encode(map[string]any{
					"id":            "PL1",
					"name":          "Road Trip",
					"description":   "songs",
					"images":        []map[string]any{{"url": "https://mosaic.scdn.co/pl"}},
					"external_urls": map[string]any{"spotify": "https://open.spotify.com/playlist/PL1"},
					"tracks": map[string]any{
						"total": 4,
						"items": []map[string]any{
							{"track": spotifyTrackJSON("t1", "Lover", "Taylor Swift", 221306)},
							{"track": nil},
						},
						"next": next,
					},
				})
			case "/v1/playlists/PL1/tracks":
				local := spotifyTrackJSON("", "Voice Memo", "Me", 1000)
				local["is_local"] = true
				json.NewEncoder(w).Encode(map[string]any{
					"total": 4,
					"items": []map[string]any{
						{"track": local},
						{"track": spotifyTrackJSON("t2", "Paper Rings", "Taylor Swift", 222400)},
					},
					"next": nil,
				})
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
				w.WriteHeader(http.StatusInternalServerError)
			}
		})

		svc := newTestSpotify(t, server)
		playlist, err := svc.FetchPlaylist(context.Background(), "PL1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if playlist.Name != "Road Trip" || playlist.URL != "https://open.spotify.com/playlist/PL1" {
			t.Errorf("unexpected playlist metadata: %+v", playlist)
		}

		if len(playlist.Tracks) != 2 {
			t.Fatalf("expected 2 tracks after skipping unavailable and local items, got %d", len(playlist.Tracks))
		}

		first := playlist.Tracks[0]
		if first.Title != "Lover" || first.PrimaryArtist() != "Taylor Swift" {
			t.Errorf("unexpected first track: %+v", first)
		}
		if first.Duration != 221.306 {
			t.Errorf("expected duration in seconds, got %v", first.Duration)
		}
		if len(first.Artists) != 2 || first.Artists[1] != "Featured" {
			t.Errorf("expected all artists, got %v", first.Artists)
		}
		if first.CoverURL != "https://i.scdn.co/image/cover" || first.AlbumArtists[0] != "Taylor Swift" {
			t.Errorf("unexpected album data: %+v", first)
		}
		if playlist.Tracks[1].ID != "t2" {
			t.Errorf("expected second page track, got %s", playlist.Tracks[1].ID)
		}
	})

	t.Run("FetchPlaylist Not Found", func(t *testing.T) {
		server := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		svc := newTestSpotify(t, server)
		_, err := svc.FetchPlaylist(context.Background(), "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("FetchPlaylist Server Error", func(t *testing.T) {
		server := newSpotifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		svc := newTestSpotify(t, server)
		_, err := svc.FetchPlaylist(context.Background(), "PL1")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestParsePlaylistRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{"share link", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", "37i9dQZF1DXcBWIGoYBM5M", nil},
		{"localized link", "https://open.spotify.com/intl-de/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M", nil},
		{"uri", "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M", nil},
		{"bare id", " 37i9dQZF1DXcBWIGoYBM5M ", "37i9dQZF1DXcBWIGoYBM5M", nil},
		{"empty", "", "", shared.ErrMissingArgument},
		{"album link", "https://open.spotify.com/album/1NAmidJlEaVgA3MpcPFYGq", "", shared.ErrInvalidArgument},
		{"garbage", "not a playlist", "", shared.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlaylistRef(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePlaylistRef(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
