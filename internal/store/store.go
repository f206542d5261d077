// Package store defines the content store boundary. The engine only ever
// talks to the Querier interface; the real vector-indexed store lives in a
// separate ingestion pipeline and is injected by the caller.
package store

import (
	"context"
	"sort"
	"strings"
)

// Chunk is one retrieved fragment of source content plus its metadata.
type Chunk struct {
	ID       string
	Text     string
	Metadata Metadata
}

// Metadata is the loosely-typed metadata attached to a chunk by the
// ingestion pipeline. The schema is owned externally; accessors below cover
// the fields this engine reads.
type Metadata map[string]any

func (m Metadata) str(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func (m Metadata) boolean(key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func (m Metadata) year(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// WikiTitle returns the source page title grouping related chunks.
func (m Metadata) WikiTitle() string { return m.str("wiki_title") }

// Faction returns the faction tag, if any.
func (m Metadata) Faction() string { return m.str("faction") }

// Region returns the geographic region tag, if any.
func (m Metadata) Region() string { return m.str("region") }

// Location returns the specific location tag, if any.
func (m Metadata) Location() string { return m.str("location") }

// Character returns the named character tag, if any.
func (m Metadata) Character() string { return m.str("character") }

// Era returns the game-era tag. Falls back to the legacy "game" key.
func (m Metadata) Era() string {
	if era := m.str("era"); era != "" {
		return era
	}
	return m.str("game")
}

// ContentType returns the ingestion pipeline's content classification.
func (m Metadata) ContentType() string { return m.str("content_type") }

// YearMin returns the earliest year referenced by the chunk, 0 if unset.
func (m Metadata) YearMin() int { return m.year("year_min") }

// YearMax returns the latest year referenced by the chunk, 0 if unset.
func (m Metadata) YearMax() int { return m.year("year_max") }

// Classified reports whether the chunk carries a classified or secret flag.
func (m Metadata) Classified() bool {
	return m.boolean("classified") || m.boolean("secret")
}

// Restricted reports whether the chunk carries a restricted flag.
func (m Metadata) Restricted() bool { return m.boolean("restricted") }

// Regional reports whether the chunk carries a regional flag.
func (m Metadata) Regional() bool { return m.boolean("regional") }

// Themes collects the boolean theme_<name> markers set on the chunk.
func (m Metadata) Themes() []string {
	var themes []string
	for key, value := range m {
		if !strings.HasPrefix(key, "theme_") {
			continue
		}
		if b, ok := value.(bool); ok && b {
			themes = append(themes, strings.TrimPrefix(key, "theme_"))
		}
	}
	sort.Strings(themes)
	return themes
}

// Filters narrows a content store query.
type Filters struct {
	// ContentTypes restricts results to chunks whose content_type metadata
	// matches one of the listed values. Empty means no restriction.
	ContentTypes []string
	// DJ applies persona-specific boundary filtering when the store
	// supports it. Empty means unfiltered.
	DJ string
	// MaxResults caps the number of chunks returned. Zero means the
	// store's default.
	MaxResults int
}

// Querier is the content store seen by the extraction layer. Query returns
// chunks ranked by relevance to the seed text.
type Querier interface {
	Query(ctx context.Context, text string, filters Filters) ([]Chunk, error)
}
