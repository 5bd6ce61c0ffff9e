// Package answer replies to a child's question with a short spoken answer
// and picks the topic, image query and video query for a later "show me".
package answer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/natattack03/catinci-showme/internal/links"
	"github.com/natattack03/catinci-showme/internal/phrase"
)

// ErrNoGenerator is returned when no model is configured.
var ErrNoGenerator = errors.New("no answer model configured")

// Generator produces raw model output for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is a parsed answer.
type Result struct {
	Spoken     string `json:"spoken"`
	Topic      string `json:"topic"`
	ImageQuery string `json:"image_query"`
	VideoQuery string `json:"video_query"`
}

// Service turns questions into Results.
type Service struct {
	gen Generator
}

// New creates a Service. gen may be nil, in which case Answer always
// fails with ErrNoGenerator.
func New(gen Generator) *Service {
	return &Service{gen: gen}
}

const basePrompt = `You are Catinci, a friendly kid-safe tutor.

Instructions:
1. Answer the child warmly in a short spoken paragraph.
2. Identify a clear simple TOPIC (like "whale belly buttons").
3. Generate safe, kid-friendly queries for images + videos.
4. Video queries will be searched on normal YouTube (not YouTube Kids) so always include "for kids" or "kid friendly" in the video query text.

Your answer must end with EXACTLY:

[TOPIC: <topic>]
[IMAGE_QUERY: <image search query>]
[VIDEO_QUERY: <video search query>]

Query rules:
- Use simple kid-friendly phrases ("for kids", "kid friendly").
- Avoid scary, violent, graphic terms.
`

// Prompt builds the model prompt. forcedTopic, when set, is passed as an
// explicit request for visuals on that topic.
func Prompt(question, forcedTopic string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	fmt.Fprintf(&b, "\nUser said: %q\n", question)
	if forcedTopic != "" {
		fmt.Fprintf(&b, "\nThe child/parent explicitly requested visuals for this topic: %s\n", forcedTopic)
	}
	b.WriteString("\nNow provide spoken answer + the 3 required tag lines.\n")
	return b.String()
}

var (
	topicTag = regexp.MustCompile(`(?is)\[TOPIC:(.*?)\]`)
	imageTag = regexp.MustCompile(`(?is)\[IMAGE_QUERY:(.*?)\]`)
	videoTag = regexp.MustCompile(`(?is)\[VIDEO_QUERY:(.*?)\]`)
	anyTag   = regexp.MustCompile(`(?i)\[(TOPIC|IMAGE_QUERY|VIDEO_QUERY):`)
)

// Parse splits raw model output into the spoken text, which is everything
// before the first tag, and the tag values. Missing tags are empty.
func Parse(raw string) Result {
	r := Result{
		Topic:      tagValue(topicTag, raw),
		ImageQuery: tagValue(imageTag, raw),
		VideoQuery: tagValue(videoTag, raw),
	}
	spoken := raw
	if loc := anyTag.FindStringIndex(raw); loc != nil {
		spoken = raw[:loc[0]]
	}
	r.Spoken = strings.TrimSpace(spoken)
	return r
}

func tagValue(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Answer asks the model about question and fills in fallbacks: the topic
// falls back to a topic named in the question, then to the first 50 runes
// of the question. Queries are always decorated kid-friendly.
func (s *Service) Answer(ctx context.Context, question string) (Result, error) {
	if s.gen == nil {
		return Result{}, ErrNoGenerator
	}

	forced, _ := phrase.ExtractTopic(question)
	raw, err := s.gen.Generate(ctx, Prompt(question, forced))
	if err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}

	r := Parse(raw)
	if r.Topic == "" {
		r.Topic = forced
	}
	if r.Topic == "" {
		r.Topic = truncateRunes(question, 50)
	}
	if r.ImageQuery == "" {
		r.ImageQuery = r.Topic
	}
	if r.VideoQuery == "" {
		r.VideoQuery = r.Topic + " videos"
	}
	r.ImageQuery = links.KidFriendlyImageQuery(r.ImageQuery)
	r.VideoQuery = links.KidFriendlyVideoQuery(r.VideoQuery)
	return r, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
