// Package ui implements the interactive review prompt and the colored run summary.
//
// [Prompt] asks about one deferred match at a time using a small bubbletea
// program. It implements the tasks oracle interface: y downloads the match, n
// skips it, o opens the candidate on YouTube Music in a browser and q stops
// the review.
//
// [RenderSummary] renders a finished run with the shared lipgloss palette.
package ui
