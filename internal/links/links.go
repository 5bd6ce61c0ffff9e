// Package links turns a sanitized topic into image and video search URLs.
// Nothing here touches the network.
package links

import (
	"net/url"
	"strings"
)

const (
	imageSearchBase = "https://www.google.com/search"
	videoSearchBase = "https://www.youtube.com/results"
)

// Links is the pair of search pages sent to a grown-up.
type Links struct {
	Topic      string `json:"topic"`
	ImageQuery string `json:"image_query"`
	VideoQuery string `json:"video_query"`
	ImageURL   string `json:"image_url"`
	VideoURL   string `json:"video_url"`
}

// Builder builds search links. With KidFriendly set, queries are
// decorated with "kid friendly" / "for kids" markers.
type Builder struct {
	KidFriendly bool
}

// Build returns both links for topic. The topic must already be sanitized.
func (b Builder) Build(topic string) Links {
	imageQ, videoQ := topic, topic
	if b.KidFriendly {
		imageQ = KidFriendlyImageQuery(topic)
		videoQ = KidFriendlyVideoQuery(topic)
	}
	return Links{
		Topic:      topic,
		ImageQuery: imageQ,
		VideoQuery: videoQ,
		ImageURL:   ImageSearchURL(imageQ),
		VideoURL:   VideoSearchURL(videoQ),
	}
}

// ImageSearchURL returns a Google Images results page for query with
// SafeSearch requested.
func ImageSearchURL(query string) string {
	v := url.Values{}
	v.Set("tbm", "isch")
	v.Set("safe", "active")
	v.Set("q", query)
	return imageSearchBase + "?" + v.Encode()
}

// VideoSearchURL returns a YouTube results page for query.
func VideoSearchURL(query string) string {
	v := url.Values{}
	v.Set("search_query", query)
	return videoSearchBase + "?" + v.Encode()
}

// KidFriendlyImageQuery prefixes "kid friendly" unless the query already
// carries a kid marker.
func KidFriendlyImageQuery(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return "kid friendly images for kids"
	}
	if !hasKidMarker(q) {
		q = "kid friendly " + q
	}
	return q
}

// KidFriendlyVideoQuery suffixes "for kids" unless the query already
// carries a kid marker. Video search is plain YouTube, not YouTube Kids.
func KidFriendlyVideoQuery(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return "fun educational videos for kids"
	}
	if !hasKidMarker(q) {
		q += " for kids"
	}
	return q
}

func hasKidMarker(q string) bool {
	lower := strings.ToLower(q)
	return strings.Contains(lower, "kid friendly") || strings.Contains(lower, "for kids")
}
