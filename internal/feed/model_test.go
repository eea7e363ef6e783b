package feed

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_AccessorsReturnCopies(t *testing.T) {
	f := parseString(t, `<rss><channel><title>Original</title><item><guid>g1</guid></item></channel></rss>`)

	title := f.Title()
	*title = "changed"
	assert.Equal(t, Text("Original"), f.Title())

	eps := f.Episodes()
	*eps[0].GUID = "changed"
	eps[0].Title = Text("added")
	eps = append(eps, Episode{GUID: Text("extra")})
	assert.Len(t, eps, 2)

	assert.Equal(t, []Episode{{GUID: Text("g1")}}, f.Episodes())
}

func TestFeed_WithSubscribed(t *testing.T) {
	f := parseString(t, `<rss><channel><title>T</title></channel></rss>`)
	sub := f.WithSubscribed(true)

	assert.True(t, sub.Subscribed())
	assert.False(t, f.Subscribed())
	assert.Equal(t, f.Title(), sub.Title())
}

func TestFeed_EpisodeIndex(t *testing.T) {
	f := parseString(t, `<rss><item><guid>a</guid></item><item><guid>b</guid></item></rss>`)

	ep, ok := f.Episode(1)
	require.True(t, ok)
	assert.Equal(t, Text("b"), ep.GUID)

	_, ok = f.Episode(2)
	assert.False(t, ok)
	_, ok = f.Episode(-1)
	assert.False(t, ok)
}

func TestFeed_MarshalJSONKeepsAbsence(t *testing.T) {
	f := parseString(t, `<rss><channel><title></title><item><guid>g</guid></item></channel></rss>`,
		WithSourceURL("http://feeds.test/rss"))

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "", decoded["title"])
	assert.Nil(t, decoded["description"])
	assert.Equal(t, "http://feeds.test/rss", decoded["source_url"])
	assert.Equal(t, false, decoded["subscribed"])

	eps := decoded["episodes"].([]interface{})
	require.Len(t, eps, 1)
	ep := eps[0].(map[string]interface{})
	assert.Equal(t, "g", ep["guid"])
	assert.Contains(t, ep, "media_url")
	assert.Nil(t, ep["media_url"])
}

func TestFeed_EmptyEpisodesMarshalAsArray(t *testing.T) {
	f := NewFeed(Text("Catalog Show"), nil, nil, nil, nil)
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"episodes":[]`), string(data))
}

func TestNewFeedCopiesInputs(t *testing.T) {
	title := "Show"
	eps := []Episode{{GUID: Text("a")}}
	f := NewFeed(&title, Text("http://x/rss"), nil, nil, eps)

	title = "mutated"
	*eps[0].GUID = "mutated"

	assert.Equal(t, Text("Show"), f.Title())
	assert.Equal(t, Text("a"), f.Episodes()[0].GUID)
}
