// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/daunroda/internal/download"
	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

// FakeCatalog is a test double for [services.Catalog] backed by a map of playlists.
type FakeCatalog struct {
	Playlists map[string]*models.Playlist
	Err       error // returned for every fetch when set
}

func (f *FakeCatalog) Name() string {
	return "fake"
}

func (f *FakeCatalog) FetchPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	pl, ok := f.Playlists[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return pl, nil
}

// FakeSearchIndex is a test double for [services.SearchIndex]. Results are
// keyed by query; unknown queries yield an empty sequence.
type FakeSearchIndex struct {
	Results map[string][]models.Candidate
	Err     error

	mu      sync.Mutex
	queries []string
	pulled  int
}

func (f *FakeSearchIndex) Search(ctx context.Context, query string) (iter.Seq[models.Candidate], error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	results := f.Results[query]
	return func(yield func(models.Candidate) bool) {
		for _, c := range results {
			f.mu.Lock()
			f.pulled++
			f.mu.Unlock()
			if !yield(c) {
				return
			}
		}
	}, nil
}

// Queries returns every query received, in order.
func (f *FakeSearchIndex) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queries)
}

// Pulled reports how many candidates were consumed across all searches.
func (f *FakeSearchIndex) Pulled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulled
}

// FakeDownloader writes Content to each job destination instead of fetching
// and transcoding. Jobs whose candidate id is in Fail return that error.
type FakeDownloader struct {
	Content string
	Fail    map[string]error

	mu   sync.Mutex
	jobs []models.DownloadJob
}

func (f *FakeDownloader) Download(ctx context.Context, job models.DownloadJob) download.Result {
	res := download.Result{Job: job}
	if shared.FileExists(job.Destination) {
		res.Skipped = true
		return res
	}

	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if err, ok := f.Fail[job.Candidate.ExternalID]; ok {
		res.Err = err
		return res
	}
	if err := os.MkdirAll(filepath.Dir(job.Destination), 0o755); err != nil {
		res.Err = err
		return res
	}
	res.Err = os.WriteFile(job.Destination, []byte(f.Content), 0o644)
	return res
}

// Jobs returns the jobs that did real work, i.e. excluding skipped ones.
func (f *FakeDownloader) Jobs() []models.DownloadJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.jobs)
}

// FakeOracle answers every review with Answer, or with Answers by candidate id when present.
type FakeOracle struct {
	Answer  bool
	Answers map[string]bool
	Err     error

	mu    sync.Mutex
	asked []models.ReviewItem
}

func (f *FakeOracle) Confirm(ctx context.Context, item models.ReviewItem) (bool, error) {
	f.mu.Lock()
	f.asked = append(f.asked, item)
	f.mu.Unlock()

	if f.Err != nil {
		return false, f.Err
	}
	if answer, ok := f.Answers[item.Job.Candidate.ExternalID]; ok {
		return answer, nil
	}
	return f.Answer, nil
}

// Asked returns every item the oracle was consulted for.
func (f *FakeOracle) Asked() []models.ReviewItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.asked)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
