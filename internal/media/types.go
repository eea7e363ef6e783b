package media

import (
	_ "embed"
	"fmt"
	"net/url"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

type Type int

const (
	TypeUnknown Type = iota
	TypeAudio
	TypeVideo
)

func (t Type) String() string {
	switch t {
	case TypeAudio:
		return "audio"
	case TypeVideo:
		return "video"
	default:
		return "unknown"
	}
}

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Audio     TypeConfig                `toml:"audio"`
	Video     TypeConfig                `toml:"video"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

// TypeDetector classifies enclosure URLs by extension, then by URL pattern.
type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var cfg TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing media_types.toml: %w", err)
	}
	return &TypeDetector{config: &cfg}, nil
}

func (d *TypeDetector) DetectType(rawURL string) Type {
	lower := strings.ToLower(strings.TrimSpace(rawURL))

	if ext := extension(lower); ext != "" {
		if slices.Contains(d.config.Audio.Extensions, ext) {
			return TypeAudio
		}
		if slices.Contains(d.config.Video.Extensions, ext) {
			return TypeVideo
		}
	}

	if matchesPattern(lower, d.config.Audio.URLPatterns) {
		return TypeAudio
	}
	if matchesPattern(lower, d.config.Video.URLPatterns) {
		return TypeVideo
	}

	return TypeUnknown
}

func (d *TypeDetector) DefaultOpener() string {
	if p, ok := d.config.Platforms[runtime.GOOS]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	if p, ok := d.config.Platforms["fallback"]; ok {
		return p.DefaultOpener
	}
	return "open"
}

// extension returns the file extension of the URL path, without query or
// fragment.
func extension(lower string) string {
	p := lower
	if u, err := url.Parse(lower); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.TrimPrefix(path.Ext(p), ".")
}

func matchesPattern(lower string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
