// Package safety strips unsafe, scary and graphic words from a topic
// before it is used to build public search queries.
//
// The filter is a best-effort word blocklist. It is not a security
// boundary and does not guarantee kid-safe search results; the search
// links also request SafeSearch from the provider.
package safety

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FallbackTopic replaces a topic that filters down to nothing.
const FallbackTopic = "science facts for kids"

// DefaultBlocklist returns the built-in blocked terms.
func DefaultBlocklist() []string {
	return []string{
		"blood", "bloody", "gore", "gory", "guts",
		"dead", "death", "dying", "corpse", "corpses",
		"kill", "killed", "killing", "killer", "murder", "murders",
		"violence", "violent", "attack", "attacks",
		"gun", "guns", "shooting", "weapon", "weapons", "bomb", "bombs", "war",
		"scary", "horror", "creepy", "terrifying", "nightmare", "demon", "demons",
		"injury", "injuries", "wound", "wounds", "graphic", "disturbing",
		"torture", "suicide",
		"nude", "naked", "sex", "sexy", "porn", "drugs", "drug", "alcohol",
	}
}

// Filter removes blocklisted tokens from topics.
type Filter struct {
	blocked map[string]struct{}
}

// New creates a Filter from the default blocklist plus extra terms.
func New(extra ...string) *Filter {
	f := &Filter{
		blocked: make(map[string]struct{}),
	}
	for _, term := range append(DefaultBlocklist(), extra...) {
		if key := f.key(term); key != "" {
			f.blocked[key] = struct{}{}
		}
	}
	return f
}

// Sanitize splits topic on whitespace, drops every blocked token and
// rejoins the rest with single spaces. If nothing survives it returns
// FallbackTopic. Sanitize is idempotent.
func (f *Filter) Sanitize(topic string) string {
	tokens := strings.Fields(topic)
	kept := tokens[:0]
	for _, tok := range tokens {
		if f.Blocked(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return FallbackTopic
	}
	return strings.Join(kept, " ")
}

// Blocked reports whether a single token is on the blocklist. Surrounding
// punctuation and case are ignored, so "Gore," is blocked.
func (f *Filter) Blocked(token string) bool {
	key := f.key(token)
	if key == "" {
		return false
	}
	_, ok := f.blocked[key]
	return ok
}

// Len returns the number of distinct blocked terms.
func (f *Filter) Len() int { return len(f.blocked) }

func (f *Filter) key(token string) string {
	t := norm.NFC.String(token)
	t = strings.TrimFunc(t, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	// Casers carry state, so one per call keeps Filter safe to share.
	return cases.Fold().String(t)
}
