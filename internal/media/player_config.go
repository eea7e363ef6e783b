package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition describes how to invoke a player for each media type.
type PlayerDefinition struct {
	Description string           `toml:"description"`
	Platforms   []string         `toml:"platforms"`
	Audio       *MediaTypeConfig `toml:"audio,omitempty"`
	Video       *MediaTypeConfig `toml:"video,omitempty"`
}

type MediaTypeConfig struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type PlayersConfig struct {
	Players map[string]PlayerDefinition `toml:"players"`
}

type PlayerRegistry struct {
	players map[string]PlayerDefinition
	goos    string
}

// UserPlayersPath is where user player definitions override the built-in ones.
func UserPlayersPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "podfeed", "players.toml")
}

// NewPlayerRegistry loads the embedded definitions, then merges any of the
// given override files that exist.
func NewPlayerRegistry(overrides ...string) (*PlayerRegistry, error) {
	var cfg PlayersConfig
	if err := toml.Unmarshal(playersTOML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}

	r := &PlayerRegistry{players: cfg.Players, goos: runtime.GOOS}
	if r.players == nil {
		r.players = make(map[string]PlayerDefinition)
	}
	for _, path := range overrides {
		if err := r.merge(path); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PlayerRegistry) merge(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var user PlayersConfig
	if err := toml.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, def := range user.Players {
		r.players[name] = def
	}
	return nil
}

// Command builds the invocation of playerName for url. Unknown players are
// run with the URL as their only argument.
func (r *PlayerRegistry) Command(playerName string, mediaType Type, url string) (*exec.Cmd, error) {
	player, ok := r.players[playerName]
	if !ok {
		return exec.Command(playerName, url), nil
	}

	if !slices.Contains(player.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", playerName, r.goos)
	}

	var cfg *MediaTypeConfig
	switch mediaType {
	case TypeAudio:
		cfg = player.Audio
	case TypeVideo:
		cfg = player.Video
	}
	if cfg == nil {
		return nil, fmt.Errorf("%s does not play %s", playerName, mediaType)
	}

	args := append(slices.Clone(r.args(cfg)), url)
	return exec.Command(playerName, args...), nil
}

func (r *PlayerRegistry) args(cfg *MediaTypeConfig) []string {
	switch r.goos {
	case "darwin":
		if len(cfg.ArgsDarwin) > 0 {
			return cfg.ArgsDarwin
		}
	case "linux":
		if len(cfg.ArgsLinux) > 0 {
			return cfg.ArgsLinux
		}
	case "windows":
		if len(cfg.ArgsWindows) > 0 {
			return cfg.ArgsWindows
		}
	}
	return cfg.Args
}

func (r *PlayerRegistry) Definition(name string) (PlayerDefinition, bool) {
	def, ok := r.players[name]
	return def, ok
}
