package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewYouTubeService("", nil); svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			if svc := NewYouTubeService("http://localhost:9000/", nil); svc.baseURL != "http://localhost:9000" {
				t.Errorf("unexpected baseURL %s", svc.baseURL)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		results := []map[string]any{
			{
				"videoId":          "v1",
				"title":            "Lover (Live From Paris)",
				"artists":          []map[string]any{{"name": "Taylor Swift", "id": "UC1"}},
				"duration":         "3:41",
				"duration_seconds": 221,
				"resultType":       "song",
			},
			{"title": "missing id"},
			{
				"videoId":  "v2",
				"title":    "Lover",
				"artists":  []map[string]any{{"name": "Taylor Swift"}, {"name": "Shawn Mendes"}},
				"duration": "1:03:41",
			},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/search" {
				t.Errorf("expected path /api/search, got %s", r.URL.Path)
			}
			if q := r.URL.Query().Get("q"); q != "Taylor Swift - Lover" {
				t.Errorf("unexpected query %q", q)
			}
			if f := r.URL.Query().Get("filter"); f != "songs" {
				t.Errorf("expected songs filter, got %q", f)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(results)
		}))
		defer server.Close()

		svc := NewYouTubeService(server.URL, server.Client())
		seq, err := svc.Search(context.Background(), "Taylor Swift - Lover")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		candidates := slices.Collect(seq)
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}

		want := models.Candidate{
			ExternalID:   "v1",
			DisplayTitle: "Lover (Live From Paris)",
			Artists:      []string{"Taylor Swift"},
			Duration:     221,
			RawLabel:     "Lover (Live From Paris)",
		}
		got := candidates[0]
		if got.ExternalID != want.ExternalID || got.DisplayTitle != want.DisplayTitle || got.Duration != want.Duration || !slices.Equal(got.Artists, want.Artists) {
			t.Errorf("candidate = %+v, want %+v", got, want)
		}

		if candidates[1].Duration != 3821 {
			t.Errorf("expected duration parsed from clock, got %v", candidates[1].Duration)
		}
	})

	t.Run("Search Empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		seq, err := NewYouTubeService(server.URL, nil).Search(context.Background(), "nothing")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for c := range seq {
			t.Errorf("expected no candidates, got %+v", c)
		}
	})

	t.Run("Search Error Detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "ytmusicapi exploded"})
		}))
		defer server.Close()

		_, err := NewYouTubeService(server.URL, nil).Search(context.Background(), "q")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Search Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		_, err := NewYouTubeService(server.URL, nil).Search(context.Background(), "q")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestParseClock(t *testing.T) {
	tests := map[string]float64{
		"":        0,
		"3:02":    182,
		"1:00:00": 3600,
		"abc":     0,
		"3:-1":    0,
	}
	for in, want := range tests {
		if got := parseClock(in); got != want {
			t.Errorf("parseClock(%q) = %v, want %v", in, got, want)
		}
	}
}
