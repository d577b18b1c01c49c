// package formatter writes playlist manifests and renders run data as text and CSV
package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/daunroda/internal/shared"
)

// ManifestPath returns <root>/<sanitized playlist>.m3u8.
func ManifestPath(root, playlist string) string {
	return filepath.Join(root, shared.FileName(playlist, "m3u8"))
}

type slot struct {
	path  string
	saved bool
}

// Manifests keeps, per playlist, the relative path of every track in playlist
// order and which of them are saved on disk. Each list is persisted as an
// .m3u8 file. Safe for concurrent use.
type Manifests struct {
	root  string
	mu    sync.Mutex
	lists map[string][]slot
}

// NewManifests creates manifests that are written below root.
func NewManifests(root string) *Manifests {
	return &Manifests{root: root, lists: make(map[string][]slot)}
}

// Reset replaces the playlist list with paths, in order, none of them saved.
func (m *Manifests) Reset(playlist string, paths []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots := make([]slot, len(paths))
	for i, p := range paths {
		slots[i] = slot{path: p}
	}
	m.lists[playlist] = slots
}

// Mark flags every slot of playlist holding relPath as saved and returns how
// many were not saved before. Paths unknown to the playlist are ignored.
func (m *Manifests) Mark(playlist, relPath string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.lists[playlist] {
		s := &m.lists[playlist][i]
		if s.path == relPath && !s.saved {
			s.saved = true
			n++
		}
	}
	return n
}

// Entries returns the saved paths of playlist in playlist order.
func (m *Manifests) Entries(playlist string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries(playlist)
}

func (m *Manifests) entries(playlist string) []string {
	var out []string
	for _, s := range m.lists[playlist] {
		if s.saved {
			out = append(out, s.path)
		}
	}
	return out
}

// Flush rewrites the playlist manifest file with the saved entries, one
// slash-separated path per line.
func (m *Manifests) Flush(playlist string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := ExportToM3U8(m.entries(playlist))
	path := ManifestPath(m.root, playlist)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// ExportToM3U8 joins relative paths with newlines, normalizing separators to "/".
func ExportToM3U8(paths []string) []byte {
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = filepath.ToSlash(p)
	}
	return []byte(strings.Join(lines, "\n"))
}
