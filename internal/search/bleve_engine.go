package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/podfeed/internal/feed"
)

const docPrefix = "episode:"

// EpisodeIndex is an in-memory bleve index over one feed's episodes. It is
// discarded with the feed; nothing is written to disk.
type EpisodeIndex struct {
	idx   bleve.Index
	count int
}

func NewEpisodeIndex(f *feed.Feed) (*EpisodeIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating episode index: %w", err)
	}

	episodes := f.Episodes()
	batch := idx.NewBatch()
	for i, ep := range episodes {
		err := batch.Index(docID(i), map[string]any{
			"title":       feed.Deref(ep.Title),
			"description": feed.Deref(ep.Description),
			"guid":        feed.Deref(ep.GUID),
		})
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("indexing episode %d: %w", i, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("indexing episodes: %w", err)
	}

	return &EpisodeIndex{idx: idx, count: len(episodes)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = false
	title.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = false

	guid := bleve.NewTextFieldMapping()
	guid.Analyzer = standard.Name
	guid.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("guid", guid)

	im.DefaultMapping = dm
	return im
}

// Search ORs per-term match and prefix queries, weighting title over
// description over guid. A limit of zero or less returns every hit.
func (e *EpisodeIndex) Search(query string, limit int) ([]Hit, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []Hit{}, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qs = append(qs,
			fieldMatch(tok, "title", 4.0),
			fieldPrefix(tok, "title", 3.5),
			fieldMatch(tok, "description", 2.0),
			fieldPrefix(tok, "description", 1.8),
			fieldMatch(tok, "guid", 0.5),
		)
	}
	if len(qs) == 0 {
		return []Hit{}, nil
	}

	if limit <= 0 || limit > e.count {
		limit = e.count
	}
	if limit == 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := e.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching episodes: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		pos, err := strconv.Atoi(strings.TrimPrefix(h.ID, docPrefix))
		if err != nil {
			continue
		}
		hits = append(hits, Hit{Position: pos, Score: h.Score})
	}
	return hits, nil
}

// DocCount reports the number of indexed episodes.
func (e *EpisodeIndex) DocCount() (int, error) {
	n, err := e.idx.DocCount()
	return int(n), err
}

func (e *EpisodeIndex) Close() error {
	return e.idx.Close()
}

func fieldMatch(term, field string, boost float64) bleveQuery.Query {
	q := bleve.NewMatchQuery(term)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func fieldPrefix(term, field string, boost float64) bleveQuery.Query {
	q := bleve.NewPrefixQuery(term)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func docID(pos int) string { return docPrefix + strconv.Itoa(pos) }
