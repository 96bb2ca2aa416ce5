// Package provider fetches feed items from an external paged search source.
package provider

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
)

type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "browse"
}

// Query selects what a provider returns. Browse uses Topics, Search uses
// Keyword; the other field is ignored.
type Query struct {
	Mode    Mode
	Topics  []string
	Keyword string
}

// ContentProvider is a paged search source without cursors: callers ask for
// maxResults items and filter the result themselves.
type ContentProvider interface {
	Search(ctx context.Context, q Query, maxResults int) ([]models.Item, error)
}

var topicCategories = map[string]string{
	"machine learning":            "cs.LG",
	"artificial intelligence":     "cs.AI",
	"computer vision":             "cs.CV",
	"natural language processing": "cs.CL",
	"robotics":                    "cs.RO",
	"physics":                     "physics",
	"mathematics":                 "math",
	"statistics":                  "stat",
	"quantitative biology":        "q-bio",
	"quantitative finance":        "q-fin",
	"economics":                   "econ",
	"electrical engineering":      "eess",
	"neural networks":             "cs.NE",
	"cryptography":                "cs.CR",
	"databases":                   "cs.DB",
	"software engineering":        "cs.SE",
	"quantum computing":           "quant-ph",
	"astrophysics":                "astro-ph",
	"condensed matter":            "cond-mat",
	"high energy physics":         "hep-ph",
}

// NormalizeTopic maps a free-form topic name such as "Machine Learning" to
// its arXiv category. Unknown names are returned trimmed.
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(topic)
	if c, ok := topicCategories[strings.ToLower(t)]; ok {
		return c
	}
	return t
}

// KnownTopics returns the topic names NormalizeTopic understands.
func KnownTopics() map[string]string {
	out := make(map[string]string, len(topicCategories))
	for k, v := range topicCategories {
		out[k] = v
	}
	return out
}
