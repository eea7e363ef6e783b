package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/podfeed/internal/config"
	"github.com/pders01/podfeed/internal/debuglog"
)

var ErrNoPlayer = errors.New("no application found to open URL")

// Launcher hands enclosure URLs to an external player. Playback itself is
// never done in-process.
type Launcher struct {
	audioPlayer   string
	videoPlayer   string
	defaultOpener string
	registry      *PlayerRegistry
	detector      *TypeDetector

	start func(*exec.Cmd) error
}

func NewLauncher(cfg *config.MediaConfig) *Launcher {
	return newLauncher(cfg, runtime.GOOS, exec.LookPath)
}

func newLauncher(cfg *config.MediaConfig, goos string, lookPath func(string) (string, error)) *Launcher {
	registry, err := NewPlayerRegistry(UserPlayersPath())
	if err != nil {
		debuglog.Warnf("player definitions unavailable: %v", err)
		registry = &PlayerRegistry{players: make(map[string]PlayerDefinition)}
	}
	registry.goos = goos

	detector, err := NewTypeDetector()
	if err != nil {
		debuglog.Warnf("media type table unavailable: %v", err)
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	l := &Launcher{
		defaultOpener: cfg.DefaultOpener,
		registry:      registry,
		detector:      detector,
		start:         startDetached,
	}
	if l.defaultOpener == "" {
		l.defaultOpener = detector.DefaultOpener()
	}

	var players config.MediaPlayers
	switch goos {
	case "linux":
		players = cfg.Linux
	case "windows":
		players = cfg.Windows
	default:
		players = cfg.Darwin
	}

	l.audioPlayer = findCommand(lookPath, players.Audio...)
	l.videoPlayer = findCommand(lookPath, players.Video...)
	if l.audioPlayer == "" {
		l.audioPlayer = l.defaultOpener
	}
	if l.videoPlayer == "" {
		l.videoPlayer = l.defaultOpener
	}

	return l
}

// PlayerFor reports which program Open would use for url.
func (l *Launcher) PlayerFor(url string) (string, Type) {
	mediaType := l.detector.DetectType(url)
	switch mediaType {
	case TypeAudio:
		return l.audioPlayer, mediaType
	case TypeVideo:
		return l.videoPlayer, mediaType
	default:
		return l.defaultOpener, mediaType
	}
}

// Open starts the player for url and returns without waiting for it.
func (l *Launcher) Open(url string) error {
	playerName, mediaType := l.PlayerFor(url)
	if playerName == "" {
		return ErrNoPlayer
	}

	cmd, err := l.registry.Command(playerName, mediaType, url)
	if err != nil {
		debuglog.Debugf("using %s without arguments: %v", playerName, err)
		cmd = exec.Command(playerName, url)
	}

	debuglog.Infof("opening %s media with %s", mediaType, playerName)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", playerName, err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(lookPath func(string) (string, error), commands ...string) string {
	for _, c := range commands {
		if _, err := lookPath(c); err == nil {
			return c
		}
	}
	return ""
}
