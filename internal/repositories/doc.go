// Package repositories implements SQLite persistence for run history.
//
// [HistoryRepository] stores one row per download run and one row per track
// outcome within that run. It satisfies the tasks recorder interface so the
// engine can write history as it goes, and it backs the history command.
package repositories
