package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/daunroda/internal/download"
	"github.com/desertthunder/daunroda/internal/repositories"
	"github.com/desertthunder/daunroda/internal/services"
	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/desertthunder/daunroda/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Services left nil are built from the loaded configuration the first time a command needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	index      services.SearchIndex
	downloader tasks.Downloader
	history    *repositories.HistoryRepository
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    services.Catalog
	Index      services.SearchIndex
	Downloader tasks.Downloader
	History    *repositories.HistoryRepository
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: "config.toml",
		catalog:    opts.Catalog,
		index:      opts.Index,
		downloader: opts.Downloader,
		history:    opts.History,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		downloadCommand, playlistsCommand, searchCommand, historyCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration file named by --config, when it exists, and applies --verbose.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if shared.FileExists(r.configPath) {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("loaded config", "path", r.configPath)
	}
	r.config.Normalize()
	return ctx, nil
}

// searchIndex returns the configured search index, building the YouTube Music proxy client if needed.
func (r *Runner) searchIndex() services.SearchIndex {
	if r.index == nil {
		r.index = services.NewYouTubeService(r.config.Credentials.YouTube.ProxyURL, r.httpClient)
	}
	return r.index
}

// ensureServices builds every service a download run needs.
func (r *Runner) ensureServices(ctx context.Context) error {
	if r.catalog == nil {
		spotify, err := services.NewSpotifyService(ctx, r.config.Credentials.Spotify)
		if err != nil {
			return err
		}
		r.catalog = spotify
	}

	r.searchIndex()

	if r.downloader == nil {
		r.downloader = download.New(
			services.NewYTDLPService(r.config.Tools.YTDLP),
			services.NewHTTPArtwork(r.httpClient),
			download.Options{
				Container: r.config.Download.Container,
				Bitrate:   r.config.Download.Bitrate,
				FFmpeg:    r.config.Tools.FFmpeg,
			},
		)
	}
	return nil
}

// openHistory returns the run history repository and a function releasing it.
// It returns a nil repository when no database path is configured.
func (r *Runner) openHistory() (*repositories.HistoryRepository, func(), error) {
	if r.history != nil {
		return r.history, func() {}, nil
	}
	if r.config.Database.Path == "" {
		return nil, func() {}, nil
	}

	db, err := shared.OpenHistory(r.config.Database.Path)
	if err != nil {
		return nil, func() {}, err
	}
	r.logger.Debug("opened history database", "path", r.config.Database.Path)
	return repositories.NewHistoryRepository(db), func() { db.Close() }, nil
}

// logEvent renders an engine event through the logger.
func (r *Runner) logEvent(e tasks.Event) {
	l := shared.WithLogger(r.logger, "phase", e.Phase.String())
	switch e.Level {
	case tasks.LevelDebug:
		if e.Err != nil {
			l.Debug(e.Message, "error", e.Err)
		} else {
			l.Debug(e.Message)
		}
	case tasks.LevelInfo:
		l.Info(e.Message)
	case tasks.LevelError:
		l.Error(e.Message, "error", e.Err)
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) write(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
