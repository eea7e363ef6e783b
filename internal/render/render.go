package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pders01/podfeed/internal/catalog"
	"github.com/pders01/podfeed/internal/feed"
	"github.com/pders01/podfeed/internal/storage"
)

const untitled = "(untitled)"

// Options control how much of a feed is printed.
type Options struct {
	Width        int
	Descriptions bool
}

func DefaultOptions() Options {
	return Options{Width: 100}
}

func (o Options) width() int {
	if o.Width <= 20 {
		return 100
	}
	return o.Width
}

// Feed prints the feed header followed by every episode, numbered from 1.
func Feed(w io.Writer, f *feed.Feed, opts Options) error {
	positions := make([]int, f.EpisodeCount())
	for i := range positions {
		positions[i] = i
	}
	return Episodes(w, f, positions, opts)
}

// Episodes prints the feed header and the episodes at the given positions.
func Episodes(w io.Writer, f *feed.Feed, positions []int, opts Options) error {
	var b strings.Builder
	width := opts.width()

	title := textOr(f.Title(), untitled)
	if f.Subscribed() {
		title += " " + SubscribedStyle.Render("★")
	}
	b.WriteString(FeedTitleStyle.Render(truncateEnd(title, width)))
	b.WriteString("\n")

	if src := f.SourceURL(); src != nil {
		b.WriteString(MutedStyle.Render(truncateMiddle(*src, width)))
		b.WriteString("\n")
	}
	if desc := PlainText(feed.Deref(f.Description())); desc != "" {
		b.WriteString(truncateEnd(desc, width))
		b.WriteString("\n")
	}
	if img := f.ImageURL(); img != nil {
		b.WriteString(MutedStyle.Render("image: " + truncateMiddle(*img, width-7)))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d episodes", f.EpisodeCount())))
	b.WriteString("\n\n")

	for _, pos := range positions {
		ep, ok := f.Episode(pos)
		if !ok {
			continue
		}
		writeEpisode(&b, pos+1, ep, opts)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeEpisode(b *strings.Builder, n int, ep feed.Episode, opts Options) {
	width := opts.width()

	line := truncateEnd(textOr(ep.Title, untitled), width-16)
	b.WriteString(IndexStyle.Render(fmt.Sprintf("%d.", n)))
	b.WriteString(" ")
	b.WriteString(EpisodeTitleStyle.Render(line))
	if ep.Duration != nil && *ep.Duration != "" {
		b.WriteString(" ")
		b.WriteString(DurationStyle.Render("[" + *ep.Duration + "]"))
	}
	b.WriteString("\n")

	if ep.MediaURL == nil {
		b.WriteString(MutedStyle.Render("      no media"))
	} else {
		b.WriteString(MutedStyle.Render("      " + truncateMiddle(*ep.MediaURL, width-6)))
	}
	b.WriteString("\n")

	if opts.Descriptions {
		if desc := PlainText(feed.Deref(ep.Description)); desc != "" {
			b.WriteString("      " + truncateEnd(desc, width-6))
			b.WriteString("\n")
		}
	}
}

// SearchResults prints catalog items numbered from 1. Items without a
// feed are marked, since they cannot be opened as podcasts.
func SearchResults(w io.Writer, items []catalog.Item, opts Options) error {
	var b strings.Builder
	width := opts.width()

	if len(items) == 0 {
		b.WriteString(MutedStyle.Render("no results"))
		b.WriteString("\n")
	}
	for i, it := range items {
		name := it.TrackName
		if name == "" {
			name = untitled
		}
		b.WriteString(IndexStyle.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(" ")
		b.WriteString(FeedTitleStyle.Render(truncateEnd(name, width-16)))
		if it.Kind != "" {
			b.WriteString(" ")
			b.WriteString(DurationStyle.Render("(" + it.Kind + ")"))
		}
		b.WriteString("\n")

		meta := strings.Join(nonEmpty(it.ArtistName, it.PrimaryGenreName), " · ")
		if meta != "" {
			b.WriteString(MutedStyle.Render("      " + truncateEnd(meta, width-6)))
			b.WriteString("\n")
		}
		if it.IsPodcast() {
			b.WriteString("      " + truncateMiddle(it.FeedURL, width-6))
		} else {
			b.WriteString(MutedStyle.Render("      no feed"))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func Subscriptions(w io.Writer, subs []*storage.Subscription, opts Options) error {
	var b strings.Builder
	width := opts.width()

	if len(subs) == 0 {
		b.WriteString(MutedStyle.Render("no subscriptions"))
		b.WriteString("\n")
	}
	for _, s := range subs {
		title := s.Title
		if title == "" {
			title = untitled
		}
		b.WriteString(SubscribedStyle.Render("★ "))
		b.WriteString(FeedTitleStyle.Render(truncateEnd(title, width-2)))
		b.WriteString(" ")
		b.WriteString(DurationStyle.Render(s.SubscribedAt.Format("2006-01-02")))
		b.WriteString("\n  ")
		b.WriteString(MutedStyle.Render(truncateMiddle(s.URL, width-2)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Failure is the one-line message shown when no feed could be loaded.
func Failure(url string, outcome feed.Outcome) string {
	var reason string
	switch outcome {
	case feed.OutcomeMalformed:
		reason = "the document is not a readable feed"
	case feed.OutcomeCancelled:
		reason = "the request was cancelled"
	default:
		reason = "the feed could not be downloaded"
	}
	return ErrorMessageStyle.Render(fmt.Sprintf("Failed to load %s: %s", url, reason))
}

func textOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return strings.TrimSpace(*s)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
