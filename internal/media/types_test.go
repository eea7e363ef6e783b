package media

import (
	"runtime"
	"testing"
)

func TestDetectType(t *testing.T) {
	d, err := NewTypeDetector()
	if err != nil {
		t.Fatalf("NewTypeDetector() error: %v", err)
	}

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{name: "MP3 enclosure", url: "https://cdn.podcast.test/ep1.mp3", expected: TypeAudio},
		{name: "M4A enclosure", url: "https://cdn.podcast.test/ep1.m4a", expected: TypeAudio},
		{name: "uppercase extension", url: "https://cdn.podcast.test/EP1.MP3", expected: TypeAudio},
		{name: "query string", url: "https://cdn.podcast.test/ep1.mp3?source=rss&t=1", expected: TypeAudio},
		{name: "fragment", url: "https://cdn.podcast.test/ep1.ogg#t=30", expected: TypeAudio},
		{name: "tracking redirect", url: "https://dts.podtrac.com/redirect/ep1", expected: TypeAudio},
		{name: "MP4 video", url: "https://cdn.podcast.test/ep1.mp4", expected: TypeVideo},
		{name: "WebM video", url: "https://cdn.podcast.test/ep1.webm", expected: TypeVideo},
		{name: "YouTube URL", url: "https://www.youtube.com/watch?v=abc123", expected: TypeVideo},
		{name: "dot in host only", url: "https://cdn.podcast.test/episodes/1", expected: TypeUnknown},
		{name: "cover image", url: "https://cdn.podcast.test/cover.jpg", expected: TypeUnknown},
		{name: "empty", url: "", expected: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DetectType(tt.url); got != tt.expected {
				t.Errorf("DetectType(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	if TypeAudio.String() != "audio" || TypeVideo.String() != "video" || TypeUnknown.String() != "unknown" {
		t.Error("unexpected Type strings")
	}
}

func TestDefaultOpener(t *testing.T) {
	d, err := NewTypeDetector()
	if err != nil {
		t.Fatalf("NewTypeDetector() error: %v", err)
	}

	want := map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "start"}[runtime.GOOS]
	if want == "" {
		want = "xdg-open"
	}
	if got := d.DefaultOpener(); got != want {
		t.Errorf("DefaultOpener() = %q, want %q", got, want)
	}

	empty := &TypeDetector{config: &TypesConfig{}}
	if got := empty.DefaultOpener(); got != "open" {
		t.Errorf("DefaultOpener() without table = %q, want open", got)
	}
}
