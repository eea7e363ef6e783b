package catalog

import (
	"github.com/pders01/podfeed/internal/feed"
)

type response struct {
	ResultCount int    `json:"resultCount"`
	Results     []Item `json:"results"`
}

// Item is one search result. Only podcasts carry a feed URL.
type Item struct {
	TrackID          int64  `json:"trackId"`
	Kind             string `json:"kind"`
	ArtistName       string `json:"artistName,omitempty"`
	TrackName        string `json:"trackName,omitempty"`
	ArtworkURL60     string `json:"artworkUrl60,omitempty"`
	PrimaryGenreName string `json:"primaryGenreName,omitempty"`
	PreviewURL       string `json:"previewUrl,omitempty"`
	FeedURL          string `json:"feedUrl,omitempty"`
}

func (i Item) IsPodcast() bool {
	return i.FeedURL != ""
}

// ToFeed builds the placeholder shown before the feed itself is fetched:
// catalog metadata only, no episodes.
func (i Item) ToFeed() *feed.Feed {
	return feed.NewFeed(
		optional(i.TrackName),
		optional(i.FeedURL),
		feed.Text("Description of "+i.TrackName),
		optional(i.ArtworkURL60),
		nil,
	)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return feed.Text(s)
}

// Podcasts filters items down to those with a feed.
func Podcasts(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.IsPodcast() {
			out = append(out, it)
		}
	}
	return out
}
