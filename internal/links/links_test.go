package links

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlain(t *testing.T) {
	l := Builder{}.Build("I want to see volcano pictures")

	assert.Equal(t, "I want to see volcano pictures", l.Topic)
	assert.Equal(t,
		"https://www.google.com/search?q=I+want+to+see+volcano+pictures&safe=active&tbm=isch",
		l.ImageURL)
	assert.Equal(t,
		"https://www.youtube.com/results?search_query=I+want+to+see+volcano+pictures",
		l.VideoURL)
}

func TestQueryIsEscaped(t *testing.T) {
	topic := `rock & roll "dinos" ?=#`
	l := Builder{}.Build(topic)

	img, err := url.Parse(l.ImageURL)
	require.NoError(t, err)
	assert.Equal(t, topic, img.Query().Get("q"))
	assert.Equal(t, "isch", img.Query().Get("tbm"))

	vid, err := url.Parse(l.VideoURL)
	require.NoError(t, err)
	assert.Equal(t, topic, vid.Query().Get("search_query"))
	assert.Equal(t, "www.youtube.com", vid.Host)
}

func TestBuildKidFriendly(t *testing.T) {
	l := Builder{KidFriendly: true}.Build("volcanoes")
	assert.Equal(t, "kid friendly volcanoes", l.ImageQuery)
	assert.Equal(t, "volcanoes for kids", l.VideoQuery)
	assert.Equal(t, "volcanoes", l.Topic)
}

func TestKidFriendlyQueries(t *testing.T) {
	assert.Equal(t, "kid friendly images for kids", KidFriendlyImageQuery("  "))
	assert.Equal(t, "fun educational videos for kids", KidFriendlyVideoQuery(""))
	assert.Equal(t, "science facts for kids", KidFriendlyImageQuery("science facts for kids"))
	assert.Equal(t, "Kid Friendly sharks", KidFriendlyVideoQuery("Kid Friendly sharks"))
}
