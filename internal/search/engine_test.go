package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/podfeed/internal/feed"
)

func testFeed() *feed.Feed {
	return feed.NewFeed(feed.Text("Go Time"), nil, nil, nil, []feed.Episode{
		{GUID: feed.Text("gt-1"), Title: feed.Text("Concurrency patterns"), Description: feed.Text("Channels and goroutines in practice")},
		{GUID: feed.Text("gt-2"), Title: feed.Text("Generics deep dive"), Description: feed.Text("Type parameters explained")},
		{GUID: feed.Text("gt-3"), Title: feed.Text("Testing tips"), Description: feed.Text("Table tests and concurrency bugs")},
		{GUID: feed.Text("gt-4")},
	})
}

func TestSearchMinLength(t *testing.T) {
	searchers := map[string]Searcher{"engine": NewEngine(testFeed())}
	idx, err := NewEpisodeIndex(testFeed())
	require.NoError(t, err)
	defer idx.Close()
	searchers["bleve"] = idx

	for name, s := range searchers {
		for _, q := range []string{"", "a", "   "} {
			hits, err := s.Search(q, 10)
			assert.NoError(t, err, name)
			assert.NotNil(t, hits, name)
			assert.Empty(t, hits, "%s: short query %q", name, q)
		}
	}
}

func TestEngine_Search(t *testing.T) {
	e := NewEngine(testFeed())

	hits, err := e.Search("concurrency", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	// Title match outranks description match
	assert.Equal(t, 0, hits[0].Position)
	assert.Equal(t, 2, hits[1].Position)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = e.Search("generic", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Position)

	hits, err = e.Search("kubernetes", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_SearchLimit(t *testing.T) {
	e := NewEngine(testFeed())

	hits, err := e.Search("concurrency", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Position)

	hits, err = e.Search("concurrency", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestEngine_EmptyFeed(t *testing.T) {
	e := NewEngine(feed.NewFeed(nil, nil, nil, nil, nil))
	hits, err := e.Search("anything", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"a b cd", []string{"cd"}},
		{"Go1.24 release", []string{"go1", "24", "release"}},
		{"   ", nil},
		{"Überraschung café", []string{"überraschung", "café"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.input))
		})
	}
}

func TestScoreField(t *testing.T) {
	assert.Zero(t, scoreField("", []string{"go"}, 1))
	assert.Zero(t, scoreField("nothing here", []string{"go"}, 1))

	exact := scoreField("go", []string{"go"}, 1)
	partial := scoreField("gopher", []string{"go"}, 1)
	assert.Greater(t, exact, partial)
	assert.Greater(t, partial, 0.0)
	assert.InDelta(t, 2*exact, scoreField("go", []string{"go"}, 2), 1e-9)
}
