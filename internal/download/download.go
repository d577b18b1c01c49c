package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/services"
	"github.com/desertthunder/daunroda/internal/shared"
	"golang.org/x/sync/errgroup"
)

// CommandRunner executes an external command, returning an error on non-zero exit.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Options configure the transcode step.
type Options struct {
	Container string // mp3 or flac
	Bitrate   int    // kbps, clamped by [ClampBitrate]
	FFmpeg    string // executable, defaults to "ffmpeg"
	TempDir   string // staging directory for fetched inputs, defaults to [os.TempDir]
}

// Result is the terminal state of one job.
type Result struct {
	Job     models.DownloadJob
	Skipped bool // destination already existed, nothing was fetched
	Err     error
}

// Downloader fetches, transcodes and places audio files.
type Downloader struct {
	media   services.MediaSource
	artwork services.ArtworkSource
	opts    Options
	run     CommandRunner
}

// New creates a Downloader. artwork may be nil to never embed covers.
func New(media services.MediaSource, artwork services.ArtworkSource, opts Options) *Downloader {
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	opts.Bitrate = ClampBitrate(opts.Bitrate)
	return &Downloader{media: media, artwork: artwork, opts: opts, run: defaultCommandRunner}
}

// WithCommandRunner replaces the ffmpeg runner.
func (d *Downloader) WithCommandRunner(r CommandRunner) *Downloader {
	if r != nil {
		d.run = r
	}
	return d
}

// ClampBitrate returns kbps when it is in (0, 320] and 320 otherwise.
func ClampBitrate(kbps int) int {
	if kbps <= 0 || kbps > shared.DefaultBitrate {
		return shared.DefaultBitrate
	}
	return kbps
}

// Codec returns the ffmpeg audio encoder for container.
func Codec(container string) string {
	if container == "flac" {
		return "flac"
	}
	return "libmp3lame"
}

// Download runs a single job. An existing destination is reported as a skipped
// success without any fetch or transcode. A destination that cannot be
// inspected fails the job.
func (d *Downloader) Download(ctx context.Context, job models.DownloadJob) Result {
	res := Result{Job: job}
	exists, err := shared.PathExists(job.Destination)
	if err != nil {
		res.Err = fmt.Errorf("failed to check %s: %w", job.Destination, err)
		return res
	}
	if exists {
		res.Skipped = true
		return res
	}
	res.Err = d.download(ctx, job)
	return res
}

func (d *Downloader) download(ctx context.Context, job models.DownloadJob) error {
	if err := os.MkdirAll(filepath.Dir(job.Destination), 0o755); err != nil {
		return fmt.Errorf("failed to create playlist directory: %w", err)
	}

	audioPath, err := tempPath(d.opts.TempDir, "daunroda-*.audio")
	if err != nil {
		return err
	}
	defer os.Remove(audioPath)

	var coverPath string
	if job.Track.CoverURL != "" && d.artwork != nil {
		if coverPath, err = tempPath(d.opts.TempDir, "daunroda-*.jpg"); err != nil {
			return err
		}
		defer os.Remove(coverPath)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rc, err := d.media.OpenAudio(gctx, job.Candidate.ExternalID)
		if err != nil {
			return wrapFetch("audio", err)
		}
		return stage(rc, audioPath, "audio")
	})
	if coverPath != "" {
		g.Go(func() error {
			rc, err := d.artwork.OpenArtwork(gctx, job.Track.CoverURL)
			if err != nil {
				return wrapFetch("cover art", err)
			}
			return stage(rc, coverPath, "cover art")
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	dir := filepath.Dir(job.Destination)
	partial := filepath.Join(dir, ".daunroda-"+shared.GenerateID()+".part")
	defer os.Remove(partial)

	args := d.ffmpegArgs(job.Track, audioPath, coverPath, partial)
	if err := d.run(ctx, d.opts.FFmpeg, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrTranscodeFailed, job.Track.Name(), err)
	}
	if _, err := os.Stat(partial); err != nil {
		return fmt.Errorf("%w: ffmpeg produced no output: %v", shared.ErrTranscodeFailed, err)
	}

	// Another job may have produced the same file while this one was running.
	if shared.FileExists(job.Destination) {
		return nil
	}
	if err := os.Rename(partial, job.Destination); err != nil {
		return fmt.Errorf("failed to place %s: %w", job.Destination, err)
	}
	return nil
}

// ffmpegArgs builds the transcode command: input audio, optional cover, codec,
// bitrate and the album/title/artist/album_artist tags.
func (d *Downloader) ffmpegArgs(track models.Track, audioPath, coverPath, output string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", audioPath}
	if coverPath != "" {
		args = append(args, "-i", coverPath)
	}

	args = append(args, "-map", "0:a:0")
	if coverPath != "" {
		args = append(args, "-map", "1:0", "-c:v", "copy")
	}
	args = append(args,
		"-c:a", Codec(d.opts.Container),
		"-b:a", strconv.Itoa(d.opts.Bitrate)+"k",
	)
	if coverPath != "" {
		args = append(args,
			"-id3v2_version", "3",
			"-disposition:v", "attached_pic",
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (Front)",
		)
	}

	args = append(args,
		"-metadata", "album="+track.Album,
		"-metadata", "title="+track.Title,
		"-metadata", "artist="+strings.Join(track.Artists, ", "),
		"-metadata", "album_artist="+strings.Join(track.AlbumArtists, ", "),
		"-f", d.opts.Container,
		output,
	)
	return args
}

func tempPath(dir, pattern string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// stage copies rc into path and closes rc.
func stage(rc io.ReadCloser, path, what string) error {
	defer rc.Close()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", what, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return wrapFetch(what, err)
	}
	return f.Close()
}

func wrapFetch(what string, err error) error {
	if errors.Is(err, shared.ErrFetchFailed) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrFetchFailed, what, err)
}
