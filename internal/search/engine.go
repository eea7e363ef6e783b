package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pders01/podfeed/internal/feed"
)

// Engine scores episodes by term overlap without building an index.
type Engine struct {
	episodes []feed.Episode
}

func NewEngine(f *feed.Feed) *Engine {
	return &Engine{episodes: f.Episodes()}
}

// Search returns matching episodes, best first. Equal scores keep
// document order.
func (e *Engine) Search(query string, limit int) ([]Hit, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []Hit{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []Hit{}, nil
	}

	hits := []Hit{}
	for i, ep := range e.episodes {
		score := scoreField(feed.Deref(ep.Title), terms, 4.0) +
			scoreField(feed.Deref(ep.Description), terms, 2.0) +
			scoreField(feed.Deref(ep.GUID), terms, 0.5)
		if score > 0 {
			hits = append(hits, Hit{Position: i, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// scoreField rates how well text matches terms, scaled by weight.
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	var score float64
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matched++
		}
		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matched++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matched++
			case strings.Contains(word, term):
				score += 0.5
				matched++
			}
		}
	}

	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}

	tf := float64(matched) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize lowercases text and splits it on anything but letters and
// digits, dropping one-character words.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if term := current.String(); len([]rune(term)) > 1 {
		terms = append(terms, term)
	}

	return terms
}
