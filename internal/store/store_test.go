package store

import (
	"context"
	"testing"
)

func TestMemoryStoreRankingAndFiltering(t *testing.T) {
	chunks := []Chunk{
		{ID: "irrelevant", Text: "weather report", Metadata: Metadata{"content_type": "event"}},
		{ID: "relevant", Text: "a great battle and war broke out", Metadata: Metadata{"content_type": "event"}},
		{ID: "wrong-type", Text: "battle war battle", Metadata: Metadata{"content_type": "quest"}},
	}
	s := NewMemoryStore(chunks)
	ctx := context.Background()

	got, err := s.Query(ctx, "battle war", Filters{ContentTypes: []string{"event"}})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Query() returned %d chunks, want 2", len(got))
	}
	if got[0].ID != "relevant" {
		t.Errorf("best match = %s, want relevant", got[0].ID)
	}

	limited, err := s.Query(ctx, "battle war", Filters{ContentTypes: []string{"event"}, MaxResults: 1})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "relevant" {
		t.Errorf("MaxResults query = %v, want only the best match", limited)
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Query(ctx, "anything", Filters{}); err == nil {
		t.Error("Query() with cancelled context should fail")
	}
}

func TestMetadataAccessors(t *testing.T) {
	m := Metadata{
		"wiki_title":   "Hoover Dam",
		"faction":      "ncr",
		"era":          "fallout_nv",
		"year_min":     float64(2281), // JSON numbers decode as float64
		"year_max":     2281,
		"secret":       true,
		"theme_war":    true,
		"theme_peace":  false,
		"theme_hope":   true,
	}

	if m.WikiTitle() != "Hoover Dam" || m.Faction() != "ncr" || m.Era() != "fallout_nv" {
		t.Errorf("string accessors wrong: %q %q %q", m.WikiTitle(), m.Faction(), m.Era())
	}
	if m.YearMin() != 2281 || m.YearMax() != 2281 {
		t.Errorf("year accessors = %d, %d, want 2281", m.YearMin(), m.YearMax())
	}
	if !m.Classified() {
		t.Error("secret flag should read as classified")
	}

	themes := m.Themes()
	if len(themes) != 2 || themes[0] != "hope" || themes[1] != "war" {
		t.Errorf("Themes() = %v, want [hope war]", themes)
	}
}

func TestMetadataEraFallsBackToGame(t *testing.T) {
	m := Metadata{"game": "fallout_3"}
	if m.Era() != "fallout_3" {
		t.Errorf("Era() = %q, want fallback to game key", m.Era())
	}
}

func TestRateLimitedStoreDelegates(t *testing.T) {
	inner := NewMemoryStore([]Chunk{{ID: "a", Text: "battle"}})
	limited := NewRateLimitedStore(inner, 600, 5)

	got, err := limited.Query(context.Background(), "battle", Filters{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Query() = %v, want the single chunk", got)
	}
}
