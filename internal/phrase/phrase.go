// Package phrase decides whether a child's utterance asks to be shown
// something now, or names a new topic to remember.
//
// Voice transcription varies the wording, so triggers are a set of
// word-bounded patterns rather than one exact string. When an utterance
// contains a trigger and extra topic words ("show me volcano pictures"),
// the trigger wins: the utterance is classified as a trigger and the
// remembered topic is used.
package phrase

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultTriggers returns the built-in trigger patterns in evaluation order.
func DefaultTriggers() []string {
	return []string{
		`\bshow me\b`,
		`\bshow us\b`,
		`\bcan you show\b`,
		`\blet me see\b`,
		`\blet us see\b`,
		`\blet's see\b`,
		`\bsend (me|us) (the )?(pictures|videos|photos)\b`,
		`\bshow (the|those|some) (pictures|videos|photos)\b`,
		`\bwhat does (that|it) look like\b`,
	}
}

// Classifier matches utterances against a set of trigger patterns.
type Classifier struct {
	patterns []*regexp.Regexp
}

// New compiles the default triggers plus any extra patterns.
func New(extra ...string) (*Classifier, error) {
	srcs := append(DefaultTriggers(), extra...)
	c := &Classifier{patterns: make([]*regexp.Regexp, 0, len(srcs))}
	for _, src := range srcs {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("compile trigger %q: %w", src, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// MustNew is like New but panics on a bad pattern.
func MustNew(extra ...string) *Classifier {
	c, err := New(extra...)
	if err != nil {
		panic(err)
	}
	return c
}

// IsTrigger reports whether text asks to be shown the remembered topic.
func (c *Classifier) IsTrigger(text string) bool {
	t := Normalize(text)
	if t == "" {
		return false
	}
	for _, re := range c.patterns {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// Normalize lowercases, NFC-normalizes, straightens apostrophes and
// collapses runs of whitespace.
func Normalize(text string) string {
	t := strings.ToLower(norm.NFC.String(text))
	t = strings.NewReplacer("’", "'", "‘", "'").Replace(t)
	return strings.Join(strings.Fields(t), " ")
}

var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`can you show (?:me|us)\s+(.+)`),
	regexp.MustCompile(`show (?:me|us)\s+(.+)`),
}

// ExtractTopic pulls the subject out of utterances like
// "can you show us whale belly buttons". It is only used as a hint for
// question answering; the show-me flow always prefers the remembered topic.
func ExtractTopic(text string) (string, bool) {
	t := Normalize(text)
	for _, re := range topicPatterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		topic := strings.Trim(m[1], " ?.!,")
		if topic != "" {
			return topic, true
		}
	}
	return "", false
}
