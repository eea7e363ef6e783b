package search

import "github.com/pders01/podfeed/internal/feed"

// Searcher finds episodes of one feed.
type Searcher interface {
	Search(query string, limit int) ([]Hit, error)
}

// Hit points at an episode by its position in Feed.Episodes().
type Hit struct {
	Position int
	Score    float64
}

// MinQueryLength is the shortest query that produces hits.
const MinQueryLength = 2

// New returns a bleve-backed index for f, or the plain scorer when the
// index cannot be built.
func New(f *feed.Feed) Searcher {
	idx, err := NewEpisodeIndex(f)
	if err != nil {
		return NewEngine(f)
	}
	return idx
}
