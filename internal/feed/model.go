package feed

import "encoding/json"

// Format is the document flavour reported by format sniffing. It is
// informational only; parsing never branches on it.
type Format string

const (
	FormatRSS     Format = "rss"
	FormatAtom    Format = "atom"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// Episode is one <item> of a feed. A nil field means the tag (or attribute)
// was absent; a pointer to "" means it was present but empty.
type Episode struct {
	GUID        *string `json:"guid"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	MediaURL    *string `json:"media_url"`
	Duration    *string `json:"duration"`
}

func (e Episode) clone() Episode {
	return Episode{
		GUID:        cloneText(e.GUID),
		Title:       cloneText(e.Title),
		Description: cloneText(e.Description),
		MediaURL:    cloneText(e.MediaURL),
		Duration:    cloneText(e.Duration),
	}
}

// Feed is the parsed form of one fetched document. It is read-only: every
// accessor hands out copies, and WithSubscribed returns a new value.
type Feed struct {
	subscribed  bool
	title       *string
	sourceURL   *string
	description *string
	imageURL    *string
	format      Format
	episodes    []Episode
}

func (f *Feed) Subscribed() bool { return f.subscribed }
func (f *Feed) Title() *string { return cloneText(f.title) }
func (f *Feed) SourceURL() *string { return cloneText(f.sourceURL) }
func (f *Feed) Description() *string { return cloneText(f.description) }
func (f *Feed) ImageURL() *string { return cloneText(f.imageURL) }
func (f *Feed) Format() Format { return f.format }
func (f *Feed) EpisodeCount() int { return len(f.episodes) }

// Episodes returns the episodes in document order.
func (f *Feed) Episodes() []Episode {
	out := make([]Episode, len(f.episodes))
	for i, e := range f.episodes {
		out[i] = e.clone()
	}
	return out
}

// Episode returns the i-th episode.
func (f *Feed) Episode(i int) (Episode, bool) {
	if i < 0 || i >= len(f.episodes) {
		return Episode{}, false
	}
	return f.episodes[i].clone(), true
}

// WithSubscribed returns a copy of f carrying the given subscription flag.
func (f *Feed) WithSubscribed(subscribed bool) *Feed {
	cp := *f
	cp.subscribed = subscribed
	return &cp
}

type feedJSON struct {
	Subscribed  bool      `json:"subscribed"`
	Title       *string   `json:"title"`
	SourceURL   *string   `json:"source_url"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Format      Format    `json:"format,omitempty"`
	Episodes    []Episode `json:"episodes"`
}

func (f *Feed) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedJSON{
		Subscribed:  f.subscribed,
		Title:       f.title,
		SourceURL:   f.sourceURL,
		Description: f.description,
		ImageURL:    f.imageURL,
		Format:      f.format,
		Episodes:    f.episodes,
	})
}

// NewFeed assembles a Feed from already known metadata, e.g. a catalog
// search result. Parsed feeds come from Parser.Parse instead.
func NewFeed(title, sourceURL, description, imageURL *string, episodes []Episode) *Feed {
	b := newBuilder()
	b.title = cloneText(title)
	b.sourceURL = cloneText(sourceURL)
	b.description = cloneText(description)
	b.imageURL = cloneText(imageURL)
	for _, e := range episodes {
		b.appendEpisode(e.clone())
	}
	return b.freeze()
}

// builder is the accumulator of a single Parse call. It never escapes the
// call; freeze hands its contents over to an immutable Feed.
type builder struct {
	title       *string
	sourceURL   *string
	description *string
	imageURL    *string
	format      Format
	episodes    []Episode
}

func newBuilder() *builder {
	return &builder{episodes: []Episode{}}
}

func (b *builder) appendEpisode(e Episode) {
	b.episodes = append(b.episodes, e)
}

func (b *builder) freeze() *Feed {
	episodes := make([]Episode, len(b.episodes))
	copy(episodes, b.episodes)
	return &Feed{
		title:       b.title,
		sourceURL:   b.sourceURL,
		description: b.description,
		imageURL:    b.imageURL,
		format:      b.format,
		episodes:    episodes,
	}
}

func cloneText(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Text returns a pointer to s, for building optional fields.
func Text(s string) *string {
	return &s
}

// Deref returns the value of s, or "" when absent.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
