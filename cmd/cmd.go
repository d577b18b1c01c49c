// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// downloadCommand runs the full search, download and review pipeline
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"dl"},
		Usage:     "Download the configured playlists (or the given ones) from YouTube Music",
		ArgsUsage: "[playlist link, URI or ID...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Download every match that needs confirmation without asking",
			},
			&cli.BoolFlag{
				Name:  "no-review",
				Usage: "Skip every match that needs confirmation without asking",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent downloads per playlist (overrides config)",
			},
		},
		Action: r.Download,
	}
}

// playlistsCommand manages the configured playlist IDs
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage the playlists to download",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a Spotify playlist by link, URI or ID",
				ArgsUsage: "<playlist>",
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a playlist, or the last one added when no ID is given",
				ArgsUsage: "[playlist]",
				Action:    r.PlaylistsRemove,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the configured playlists",
				Action:  r.PlaylistsList,
			},
		},
	}
}

// searchCommand classifies YouTube Music results for a single track
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Show how the search results for a track would be classified",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "artist",
				Aliases:  []string{"a"},
				Usage:    "Primary artist of the track",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Title of the track",
				Required: true,
			},
			&cli.FloatFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Duration of the track in seconds",
			},
		},
		Action: r.Search,
	}
}

// historyCommand inspects past runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past runs (requires database.path)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   20,
			},
		},
		Action: r.HistoryList,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show the track outcomes of a run",
				ArgsUsage: "<run id or prefix>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show outcomes with this status (downloaded, existing, not_found, deferred, approved, declined, failed)",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// configCommand inspects and creates the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file operations",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the example configuration to --config",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
