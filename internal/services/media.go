package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/lrstanley/go-ytdlp"
)

// YTDLPService implements [MediaSource] by shelling out to yt-dlp.
type YTDLPService struct {
	executable string
	tempDir    string
}

// NewYTDLPService creates a media source using the yt-dlp binary at executable ("" uses $PATH).
func NewYTDLPService(executable string) *YTDLPService {
	return &YTDLPService{executable: executable}
}

// OpenAudio downloads the best audio stream of a YouTube Music video into a
// private temporary directory. Closing the returned reader removes the directory.
func (y *YTDLPService) OpenAudio(ctx context.Context, externalID string) (io.ReadCloser, error) {
	dir, err := os.MkdirTemp(y.tempDir, "daunroda-audio-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	dl := ytdlp.New().
		Format("bestaudio").
		NoPlaylist().
		Output(filepath.Join(dir, "audio.%(ext)s"))
	if y.executable != "" {
		dl = dl.SetExecutable(y.executable)
	}

	if _, err := dl.Run(ctx, "https://music.youtube.com/watch?v="+externalID); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: yt-dlp %s: %v", shared.ErrFetchFailed, externalID, err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "audio.*"))
	if len(matches) == 0 {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: yt-dlp produced no audio for %s", shared.ErrFetchFailed, externalID)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	return &dirFile{File: f, dir: dir}, nil
}

// dirFile removes its parent directory on Close.
type dirFile struct {
	*os.File
	dir string
}

func (d *dirFile) Close() error {
	err := d.File.Close()
	if rmErr := os.RemoveAll(d.dir); err == nil {
		err = rmErr
	}
	return err
}

// HTTPArtwork implements [ArtworkSource] with a plain HTTP GET.
type HTTPArtwork struct {
	httpClient *http.Client
}

// NewHTTPArtwork creates an artwork source. A nil client uses [http.DefaultClient].
func NewHTTPArtwork(client *http.Client) *HTTPArtwork {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPArtwork{httpClient: client}
}

// OpenArtwork fetches the image at url. The caller closes the body.
func (h *HTTPArtwork) OpenArtwork(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cover art: %v", shared.ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: cover art: status %d", shared.ErrFetchFailed, resp.StatusCode)
	}
	return resp.Body, nil
}
