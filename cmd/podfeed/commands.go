package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/podfeed/internal/catalog"
	"github.com/pders01/podfeed/internal/config"
	"github.com/pders01/podfeed/internal/feed"
	"github.com/pders01/podfeed/internal/render"
	"github.com/pders01/podfeed/internal/search"
	"github.com/pders01/podfeed/internal/validation"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// Skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Banner(Version))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "podfeed %s\n", Version)
			fmt.Fprintln(out, "Podcast feed reader")
			fmt.Fprintln(out, "github.com/pders01/podfeed")
		},
	}
}

func newGenerateConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:               "generate-config",
		Short:             "Write the default configuration file",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "where to write the file (default ~/.config/podfeed/config.toml)")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		podcastsOnly bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := catalog.NewClient(&a.cfg.Catalog, catalog.WithUserAgent(a.cfg.Feed.UserAgent))
			if err != nil {
				return err
			}

			items, err := client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if podcastsOnly {
				items = catalog.Podcasts(items)
			}
			if asJSON {
				feeds := make([]*feed.Feed, len(items))
				for i, it := range items {
					feeds[i] = it.ToFeed()
				}
				return writeJSON(cmd, feeds)
			}
			return render.SearchResults(cmd.OutOrStdout(), items, render.DefaultOptions())
		},
	}
	cmd.Flags().BoolVar(&podcastsOnly, "podcasts", false, "only show results that have a feed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each result as a placeholder feed in JSON")
	return cmd
}

func newFeedCmd(a *app) *cobra.Command {
	var (
		asJSON       bool
		grep         string
		limit        int
		descriptions bool
	)
	cmd := &cobra.Command{
		Use:   "feed <url>",
		Short: "Fetch a feed and list its episodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done := a.newService()
			defer done()

			url := args[0]
			f, err := svc.Fetch(cmd.Context(), url)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.Failure(url, feed.Classify(nil, err)))
				return err
			}

			opts := render.DefaultOptions()
			opts.Descriptions = descriptions
			if grep == "" {
				if asJSON {
					return writeJSON(cmd, f)
				}
				return render.Feed(cmd.OutOrStdout(), f, opts)
			}

			positions, err := matchEpisodes(f, grep, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, episodesAt(f, positions))
			}
			return render.Episodes(cmd.OutOrStdout(), f, positions, opts)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed feed as JSON")
	cmd.Flags().StringVar(&grep, "grep", "", "only show episodes matching this query")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of --grep matches (0 = all)")
	cmd.Flags().BoolVar(&descriptions, "descriptions", false, "include episode descriptions")
	return cmd
}

// matchEpisodes returns the positions of the episodes matching query, best
// match first.
func matchEpisodes(f *feed.Feed, query string, limit int) ([]int, error) {
	idx := search.New(f)
	if c, ok := idx.(io.Closer); ok {
		defer c.Close()
	}

	hits, err := idx.Search(query, limit)
	if err != nil {
		return nil, err
	}
	positions := make([]int, 0, len(hits))
	for _, h := range hits {
		positions = append(positions, h.Position)
	}
	return positions, nil
}

func episodesAt(f *feed.Feed, positions []int) []feed.Episode {
	episodes := make([]feed.Episode, 0, len(positions))
	for _, pos := range positions {
		if ep, ok := f.Episode(pos); ok {
			episodes = append(episodes, ep)
		}
	}
	return episodes
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPlayCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "play <url> <episode>",
		Short: "Open an episode's media in an external player",
		Long:  "Open an episode's media in an external player. Episodes are numbered from 1 as listed by the feed command.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid episode number %q", args[1])
			}

			svc, done := a.newService()
			defer done()

			f, err := svc.Fetch(cmd.Context(), args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.Failure(args[0], feed.Classify(nil, err)))
				return err
			}

			ep, ok := f.Episode(n - 1)
			if !ok {
				return fmt.Errorf("episode %d not found, feed has %d episodes", n, f.EpisodeCount())
			}
			if ep.MediaURL == nil || *ep.MediaURL == "" {
				return fmt.Errorf("episode %d has no media", n)
			}

			title := feed.Deref(ep.Title)
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", title, *ep.MediaURL)
				return nil
			}
			if err := newOpener(&a.cfg.Media).Open(*ep.MediaURL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s\n", title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the media URL instead of playing it")
	return cmd
}

func newSubscribeCmd(a *app) *cobra.Command {
	var (
		allowLocal bool
		noFetch    bool
	)
	cmd := &cobra.Command{
		Use:   "subscribe <url>",
		Short: "Remember a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator := validation.NewFeedURLValidator()
			if allowLocal {
				validator = validation.NewPermissiveFeedURLValidator()
			}
			url, err := validator.ValidateAndNormalize(args[0])
			if err != nil {
				return err
			}

			var title string
			if !noFetch {
				svc := feed.NewService(&a.cfg.Feed)
				if f := svc.RequestFeed(cmd.Context(), url); f != nil {
					title = feed.Deref(f.Title())
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), render.MutedStyle.Render("feed could not be loaded, subscribing anyway"))
				}
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sub, err := store.Subscribe(url, strings.TrimSpace(title))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.SuccessStyle.Render("Subscribed to "+sub.URL))
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowLocal, "allow-local", false, "accept localhost and private network feeds")
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "do not fetch the feed for its title")
	return cmd
}

func newUnsubscribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <url>",
		Short: "Forget a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Unsubscribe(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.SuccessStyle.Render("Unsubscribed from "+args[0]))
			return nil
		},
	}
}

func newSubscriptionsCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List subscribed feeds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			subs, err := store.List()
			if err != nil {
				return err
			}
			if !refresh {
				return render.Subscriptions(cmd.OutOrStdout(), subs, render.DefaultOptions())
			}

			urls := make([]string, len(subs))
			for i, s := range subs {
				urls[i] = s.URL
			}
			svc := feed.NewService(&a.cfg.Feed)
			svc.SetSubscriptions(store)

			var failed int
			out := cmd.OutOrStdout()
			for _, r := range svc.FetchAll(cmd.Context(), urls) {
				switch r.Outcome() {
				case feed.OutcomeOK, feed.OutcomeNoEpisodes:
					fmt.Fprintf(out, "%s  %s\n",
						render.FeedTitleStyle.Render(feed.Deref(r.Feed.Title())),
						render.MutedStyle.Render(fmt.Sprintf("%d episodes", r.Feed.EpisodeCount())))
				default:
					failed++
					fmt.Fprintln(out, render.Failure(r.URL, r.Outcome()))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d feeds failed", failed, len(urls))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch every subscribed feed and report its episode count")
	return cmd
}
