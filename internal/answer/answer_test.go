package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

const wellFormed = `Whales are mammals, so they have belly buttons just like you!

[TOPIC: whale belly buttons]
[IMAGE_QUERY: whale belly button for kids]
[VIDEO_QUERY: baby whale born videos]`

func TestParse(t *testing.T) {
	r := Parse(wellFormed)
	assert.Equal(t, "Whales are mammals, so they have belly buttons just like you!", r.Spoken)
	assert.Equal(t, "whale belly buttons", r.Topic)
	assert.Equal(t, "whale belly button for kids", r.ImageQuery)
	assert.Equal(t, "baby whale born videos", r.VideoQuery)
}

func TestParseOutOfOrderAndCase(t *testing.T) {
	r := Parse("Stars twinkle!\n[video_query: stars]\n[Topic: stars]")
	assert.Equal(t, "Stars twinkle!", r.Spoken)
	assert.Equal(t, "stars", r.Topic)
	assert.Equal(t, "stars", r.VideoQuery)
	assert.Empty(t, r.ImageQuery)
}

func TestParseNoTags(t *testing.T) {
	r := Parse("  Just an answer.  ")
	assert.Equal(t, "Just an answer.", r.Spoken)
	assert.Empty(t, r.Topic)
}

func TestAnswer(t *testing.T) {
	gen := &fakeGenerator{out: wellFormed}
	r, err := New(gen).Answer(context.Background(), "Why do whales have belly buttons?")
	require.NoError(t, err)

	assert.Equal(t, "whale belly buttons", r.Topic)
	assert.Equal(t, "whale belly button for kids", r.ImageQuery)
	assert.Equal(t, "baby whale born videos for kids", r.VideoQuery)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `User said: "Why do whales have belly buttons?"`)
	assert.NotContains(t, gen.prompts[0], "explicitly requested")
}

func TestAnswerForcedTopicFallback(t *testing.T) {
	gen := &fakeGenerator{out: "Sure, stars are suns far away."}
	r, err := New(gen).Answer(context.Background(), "can you show us stars in iceland")
	require.NoError(t, err)

	assert.Equal(t, "stars in iceland", r.Topic)
	assert.Equal(t, "kid friendly stars in iceland", r.ImageQuery)
	assert.Equal(t, "stars in iceland videos for kids", r.VideoQuery)
	assert.Contains(t, gen.prompts[0], "explicitly requested visuals for this topic: stars in iceland")
}

func TestAnswerTruncatesQuestionTopic(t *testing.T) {
	q := strings.Repeat("é", 80)
	r, err := New(&fakeGenerator{out: "hmm"}).Answer(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), r.Topic)
}

func TestAnswerErrors(t *testing.T) {
	_, err := New(nil).Answer(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoGenerator)

	boom := errors.New("quota")
	_, err = New(&fakeGenerator{err: boom}).Answer(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
}
