package shared

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Taylor Swift - Lover", "Taylor Swift - Lover"},
		{"slashes", "AC/DC - Back In Black", "ACDC - Back In Black"},
		{"illegal punctuation", `What? <Now> "Here": *|\`, "What Now Here"},
		{"control characters", "tab\there\x00", "tabhere"},
		{"dots only", "..", ""},
		{"windows reserved", "CON", ""},
		{"windows reserved with extension", "lpt1.txt", ""},
		{"trailing dot and space", "Mr. Brightside. ", "Mr. Brightside"},
		{"keeps unicode", "Sigur Rós - Hoppípolla", "Sigur Rós - Hoppípolla"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("truncates on rune boundary", func(t *testing.T) {
		long := strings.Repeat("é", 200)
		got := SanitizeFilename(long)
		if len(got) > maxFilenameBytes {
			t.Fatalf("expected at most %d bytes, got %d", maxFilenameBytes, len(got))
		}
		if !strings.HasPrefix(long, got) || len(got)%2 != 0 {
			t.Errorf("truncation split a rune: %q", got)
		}
	})

	t.Run("normalizes decomposed forms", func(t *testing.T) {
		if got := SanitizeFilename("Beyonce\u0301"); got != "Beyonc\u00e9" {
			t.Errorf("expected NFC form, got %q", got)
		}
	})
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		stem string
		ext  string
		want string
	}{
		{"short", "A - Lover", "mp3", "A - Lover.mp3"},
		{"sanitizes stem", "AC/DC - T.N.T.", "m3u8", "ACDC - T.N.T.m3u8"},
		{"empty stem", "..", "mp3", ".mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.stem, tt.ext); got != tt.want {
				t.Errorf("FileName(%q, %q) = %q, want %q", tt.stem, tt.ext, got, tt.want)
			}
		})
	}

	for _, ext := range []string{"mp3", "opus", "m3u8"} {
		t.Run("long stem keeps ."+ext+" within the limit", func(t *testing.T) {
			got := FileName(strings.Repeat("x", 300), ext)
			if len(got) > maxFilenameBytes {
				t.Fatalf("expected at most %d bytes, got %d", maxFilenameBytes, len(got))
			}
			if !strings.HasSuffix(got, "."+ext) {
				t.Errorf("expected .%s suffix, got %q", ext, got)
			}
		})
	}

	t.Run("multibyte stem is cut on a rune boundary", func(t *testing.T) {
		got := FileName(strings.Repeat("é", 200), "flac")
		stem := strings.TrimSuffix(got, ".flac")
		if len(got) > maxFilenameBytes || len(stem)%2 != 0 {
			t.Errorf("unexpected name %q (%d bytes)", got, len(got))
		}
	})
}
