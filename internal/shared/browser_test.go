package shared

import (
	"slices"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	url := "https://music.youtube.com/watch?v=abc"
	tests := []struct {
		goos    string
		name    string
		args    []string
		wantErr bool
	}{
		{"darwin", "open", []string{url}, false},
		{"linux", "xdg-open", []string{url}, false},
		{"windows", "cmd", []string{"/c", "start", url}, false},
		{"plan9", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			name, args, err := browserCommand(url)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.name || !slices.Equal(args, tt.args) {
				t.Errorf("got %s %v, want %s %v", name, args, tt.name, tt.args)
			}
		})
	}
}
