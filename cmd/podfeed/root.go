package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/podfeed/internal/config"
	"github.com/pders01/podfeed/internal/debuglog"
	"github.com/pders01/podfeed/internal/feed"
	"github.com/pders01/podfeed/internal/media"
	"github.com/pders01/podfeed/internal/storage"
)

// opener starts playback of a media URL.
type opener interface {
	Open(url string) error
}

var newOpener = func(cfg *config.MediaConfig) opener {
	return media.NewLauncher(cfg)
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "podfeed",
		Short:         "Search podcasts and read their feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = debuglog.Close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to subscription database (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error, off (overrides config)")

	root.AddCommand(
		newVersionCmd(),
		newGenerateConfigCmd(),
		newSearchCmd(a),
		newFeedCmd(a),
		newPlayCmd(a),
		newSubscribeCmd(a),
		newUnsubscribeCmd(a),
		newSubscriptionsCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	rot := debuglog.Rotation{MaxSizeMB: cfg.Log.MaxSizeMB, MaxBackups: cfg.Log.MaxBackups}
	if err := debuglog.SetupRotating(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File, rot); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	return nil
}

func (a *app) openStore() (*storage.Store, error) {
	store, err := storage.Open(&a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscriptions: %w", err)
	}
	return store, nil
}

// newService returns a feed service that marks subscribed feeds. The store
// is optional: without it feeds are simply never marked.
func (a *app) newService() (*feed.Service, func()) {
	svc := feed.NewService(&a.cfg.Feed)

	store, err := a.openStore()
	if err != nil {
		debuglog.Warnf("continuing without subscriptions: %v", err)
		return svc, func() {}
	}
	svc.SetSubscriptions(store)
	return svc, func() { store.Close() }
}
