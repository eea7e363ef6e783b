package feed

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/mmcdole/gofeed"
)

const itemTag = "item"

type feedTagHandler func(b *builder, n *Node)

type episodeTagHandler func(e *Episode, n *Node)

// feedTags is consulted for every element outside an item. The item entry
// consumes the element's direct children; the walk never descends into it.
var feedTags = map[string]feedTagHandler{
	"title":   func(b *builder, n *Node) { b.title = Text(n.TextContent()) },
	"summary": func(b *builder, n *Node) { b.description = Text(n.TextContent()) },
	"image":   func(b *builder, n *Node) { b.imageURL = n.Attr("href") },
	itemTag:   func(b *builder, n *Node) { b.appendEpisode(parseItem(n)) },
}

// episodeTags is consulted for the direct children of an item only.
var episodeTags = map[string]episodeTagHandler{
	"title":           func(e *Episode, n *Node) { e.Title = Text(n.TextContent()) },
	"guid":            func(e *Episode, n *Node) { e.GUID = Text(n.TextContent()) },
	"description":     func(e *Episode, n *Node) { e.Description = Text(n.TextContent()) },
	"enclosure":       func(e *Episode, n *Node) { e.MediaURL = n.Attr("url") },
	"itunes:duration": func(e *Episode, n *Node) { e.Duration = Text(n.TextContent()) },
}

// FeedTags lists the element names consumed at feed level.
func FeedTags() []string { return sortedKeys(feedTags) }

// EpisodeTags lists the element names consumed inside an item.
func EpisodeTags() []string { return sortedKeys(episodeTags) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseOption sets caller-supplied fields that do not come from the document.
type ParseOption func(b *builder)

// WithSourceURL records the URL the document was fetched from.
func WithSourceURL(url string) ParseOption {
	return func(b *builder) { b.sourceURL = Text(url) }
}

// Parse reads the whole document and walks it. A document that is not
// well-formed XML yields a *MalformedDocumentError; a well-formed one never
// fails, it only yields sparser data.
func (p *Parser) Parse(r io.Reader, opts ...ParseOption) (*Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	data, transcoded, err := decodeBOM(data)
	if err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	doc, err := buildTree(bytes.NewReader(data), transcoded)
	if err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}

	b := newBuilder()
	for _, opt := range opts {
		opt(b)
	}
	b.format = DetectFormat(data)
	walk(b, doc)

	return b.freeze(), nil
}

// walk visits n depth-first, pre-order.
func walk(b *builder, n *Node) {
	if n.Kind == ElementNode {
		if handle, ok := feedTags[n.Name]; ok {
			handle(b, n)
		}
		if n.Name == itemTag {
			return
		}
	}
	for _, c := range n.Children {
		walk(b, c)
	}
}

func parseItem(item *Node) Episode {
	var e Episode
	for _, c := range item.Children {
		if c.Kind != ElementNode {
			continue
		}
		if handle, ok := episodeTags[c.Name]; ok {
			handle(&e, c)
		}
	}
	return e
}

// DetectFormat sniffs the document flavour.
func DetectFormat(data []byte) Format {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		return FormatRSS
	case gofeed.FeedTypeAtom:
		return FormatAtom
	case gofeed.FeedTypeJSON:
		return FormatJSON
	default:
		return FormatUnknown
	}
}
