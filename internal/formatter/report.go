package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/daunroda/internal/matcher"
	"github.com/desertthunder/daunroda/internal/models"
)

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds float64) string {
	s := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// ExportVerdicts renders one row per evaluated candidate.
func ExportVerdicts(verdicts []matcher.Verdict, candidates []models.Candidate) []byte {
	headers := []string{"#", "ID", "TITLE", "ARTISTS", "LENGTH", "TITLE SIM", "ARTIST", "DELTA", "VERDICT"}
	rows := make([][]string, 0, len(verdicts))
	for i, v := range verdicts {
		c := candidates[i]
		verdict := v.Decision.Kind.String()
		switch {
		case v.HardRejected:
			verdict = "skipped"
		case v.Decision.Kind == models.Deferred:
			verdict += " (" + v.Decision.Reason.String() + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.ExternalID,
			c.DisplayTitle,
			strings.Join(c.Artists, ", "),
			FormatDuration(c.Duration),
			fmt.Sprintf("%.2f", v.Score.TitleSimilarity),
			strconv.FormatBool(v.Score.ArtistMatch),
			fmt.Sprintf("%d%%", v.Score.RoundedDelta()),
			verdict,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, 4: alignRight, 5: alignRight, 7: alignRight})
}

// ExportRuns renders run history as an aligned table.
func ExportRuns(runs []models.Run) []byte {
	headers := []string{"RUN", "STARTED", "DURATION", "PLAYLISTS", "DOWNLOADED", "NOT FOUND", "FAILED"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		elapsed := "-"
		if !r.FinishedAt.IsZero() {
			elapsed = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			elapsed,
			strconv.Itoa(r.Playlists),
			strconv.Itoa(r.Downloaded),
			strconv.Itoa(r.NotFound),
			strconv.Itoa(r.Failed),
		})
	}
	return renderTable(headers, rows, []columnAlignment{3: alignRight, 4: alignRight, 5: alignRight, 6: alignRight})
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws a borderless table, one line per row, ending in a newline.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) []byte {
	columns := len(headers)
	if columns == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	tw.Style().Options = table.OptionsNoBordersAndSeparators

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return []byte(tw.Render() + "\n")
}

// ExportOutcomesCSV converts outcomes to CSV with columns: Playlist, Track ID, Track, Status, Candidate, Detail, Recorded At
func ExportOutcomesCSV(outcomes []models.Outcome) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Playlist", "Track ID", "Track", "Status", "Candidate", "Detail", "Recorded At"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, o := range outcomes {
		record := []string{
			o.Playlist,
			o.TrackID,
			o.TrackName,
			string(o.Status),
			o.CandidateID,
			o.Detail,
			o.RecordedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
