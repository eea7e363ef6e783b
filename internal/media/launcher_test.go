package media

import (
	"errors"
	"os/exec"
	"slices"
	"testing"

	"github.com/pders01/podfeed/internal/config"
)

func lookPathOf(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		if slices.Contains(installed, name) {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
}

func testMediaConfig() *config.MediaConfig {
	return &config.MediaConfig{
		Linux: config.MediaPlayers{
			Audio: []string{"mpv", "vlc"},
			Video: []string{"vlc"},
		},
		DefaultOpener: "xdg-open",
	}
}

func TestNewLauncher(t *testing.T) {
	cfg := config.TestConfig()
	l := NewLauncher(&cfg.Media)
	if l == nil {
		t.Fatal("NewLauncher returned nil")
	}
	if l.defaultOpener == "" {
		t.Error("launcher has no default opener")
	}
	if l.audioPlayer == "" || l.videoPlayer == "" {
		t.Error("players should fall back to the default opener")
	}
}

func TestLauncher_PlayerSelection(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		url       string
		want      string
		wantType  Type
	}{
		{"first installed audio player", []string{"mpv", "vlc"}, "https://cdn.test/ep.mp3", "mpv", TypeAudio},
		{"second audio player", []string{"vlc"}, "https://cdn.test/ep.mp3", "vlc", TypeAudio},
		{"video player", []string{"mpv", "vlc"}, "https://cdn.test/ep.mp4", "vlc", TypeVideo},
		{"nothing installed", nil, "https://cdn.test/ep.mp3", "xdg-open", TypeAudio},
		{"unknown type", []string{"mpv"}, "https://cdn.test/page", "xdg-open", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLauncher(testMediaConfig(), "linux", lookPathOf(tt.installed...))
			got, typ := l.PlayerFor(tt.url)
			if got != tt.want || typ != tt.wantType {
				t.Errorf("PlayerFor(%q) = %s/%v, want %s/%v", tt.url, got, typ, tt.want, tt.wantType)
			}
		})
	}
}

func TestLauncher_Open(t *testing.T) {
	l := newLauncher(testMediaConfig(), "linux", lookPathOf("mpv"))
	l.registry.goos = "linux"

	var started *exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	if err := l.Open("https://cdn.test/ep.mp3"); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if started == nil {
		t.Fatal("no command started")
	}
	want := []string{"mpv", "--no-video", "--force-window=no", "https://cdn.test/ep.mp3"}
	if !slices.Equal(started.Args, want) {
		t.Errorf("started %v, want %v", started.Args, want)
	}

	// The registry has no definition for xdg-open; it gets the bare URL
	if err := l.Open("https://cdn.test/page"); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !slices.Equal(started.Args, []string{"xdg-open", "https://cdn.test/page"}) {
		t.Errorf("started %v", started.Args)
	}
}

func TestLauncher_OpenErrors(t *testing.T) {
	l := newLauncher(testMediaConfig(), "linux", lookPathOf("mpv"))
	l.start = func(*exec.Cmd) error { return errors.New("exec format error") }

	if err := l.Open("https://cdn.test/ep.mp3"); err == nil {
		t.Error("expected start failure to surface")
	}

	l.defaultOpener = ""
	l.start = func(*exec.Cmd) error { return nil }
	if err := l.Open("https://cdn.test/page"); !errors.Is(err, ErrNoPlayer) {
		t.Errorf("Open() error = %v, want ErrNoPlayer", err)
	}
}
