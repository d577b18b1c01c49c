package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/daunroda/internal/shared"
)

// ResolveRunID expands an id prefix to the full run id.
//
// Prefixes make the ids printed by the history table usable as arguments.
// An unknown prefix wraps [shared.ErrRunNotFound] and an ambiguous one wraps
// [shared.ErrInvalidArgument].
func ResolveRunID(db *sql.DB, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	rows, err := db.Query("SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2", prefix)
	if err != nil {
		return "", fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("row iteration error: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", shared.ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: run id prefix %q is ambiguous", shared.ErrInvalidArgument, prefix)
	}
}
