package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/daunroda/internal/services"
	"github.com/desertthunder/daunroda/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsAdd appends a playlist to the config file.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := services.ParsePlaylistRef(cmd.Args().First())
	if err != nil {
		return err
	}
	if slices.Contains(r.config.Playlists.IDs, id) {
		return fmt.Errorf("%w: playlist %s is already configured", shared.ErrInvalidArgument, id)
	}

	r.config.Playlists.IDs = append(r.config.Playlists.IDs, id)
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}

	r.logger.Info("added playlist", "id", id, "config", r.configPath)
	return r.writePlain("Added %s\n", id)
}

// PlaylistsRemove removes the given playlist, or the last configured one.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	ids := r.config.Playlists.IDs
	if len(ids) == 0 {
		return fmt.Errorf("%w: no playlists configured", shared.ErrInvalidArgument)
	}

	idx := len(ids) - 1
	if ref := cmd.Args().First(); ref != "" {
		id, err := services.ParsePlaylistRef(ref)
		if err != nil {
			return err
		}
		if idx = slices.Index(ids, id); idx < 0 {
			return fmt.Errorf("%w: playlist %s is not configured", shared.ErrInvalidArgument, id)
		}
	}

	removed := ids[idx]
	r.config.Playlists.IDs = slices.Delete(ids, idx, idx+1)
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}

	r.logger.Info("removed playlist", "id", removed, "config", r.configPath)
	return r.writePlain("Removed %s\n", removed)
}

// PlaylistsList prints the configured playlists in download order.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if len(r.config.Playlists.IDs) == 0 {
		return r.writePlain("No playlists configured\n")
	}
	for i, id := range r.config.Playlists.IDs {
		if err := r.writePlain("%d. %s\n", i+1, id); err != nil {
			return err
		}
	}
	return nil
}
