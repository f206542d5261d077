// Package extract mines the external content store for coherent narratives
// and shapes them into pool-ready stories. Chunks sharing a source title are
// grouped, forced into a five-act shape, annotated from metadata, and run
// through the narrative-weight admission gate before they ever reach a pool.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/store"
	"github.com/vampirenirmal/storycast/internal/story"
	"github.com/vampirenirmal/storycast/internal/weight"
)

// Options tunes one extraction run.
type Options struct {
	// MaxStories caps the total stories returned.
	MaxStories int
	// Timeline, when set, keeps only stories assigned that timeline.
	Timeline story.Timeline
	// MinChunks is the smallest chunk group worth a story.
	MinChunks int
	// MaxChunks caps the chunks consumed per story.
	MaxChunks int
	// DJ applies persona-specific store filtering when non-empty.
	DJ string
}

// Extractor converts content store query results into candidate stories.
type Extractor struct {
	store    store.Querier
	gate     *weight.Gate
	keywords config.Keywords
	limit    int
	logger   *slog.Logger
}

// New builds an extractor. The gate may be nil to skip admission control
// (useful for inspection tooling); production wiring always passes one.
func New(querier store.Querier, gate *weight.Gate, keywords config.Keywords, queryLimit int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if queryLimit <= 0 {
		queryLimit = 300
	}
	return &Extractor{
		store:    querier,
		gate:     gate,
		keywords: keywords,
		limit:    queryLimit,
		logger:   logger,
	}
}

// source pairs a query seed with the content types it targets.
type source struct {
	contentType string
	seedText    string
	typeFilters []string
}

var sources = []source{
	{
		contentType: "quest",
		seedText:    "quest objective reward walkthrough",
		typeFilters: []string{"quest", "questline"},
	},
	{
		contentType: "event",
		seedText:    "battle conflict war event major incident",
		typeFilters: []string{"event", "battle", "war"},
	},
}

// ExtractStories queries the store for each content type concurrently and
// converts qualifying chunk groups into stories. Individual malformed groups
// are skipped, never fatal; only a total store failure returns an error.
func (e *Extractor) ExtractStories(ctx context.Context, opts Options) ([]story.Story, error) {
	if opts.MaxStories <= 0 {
		opts.MaxStories = 10
	}
	if opts.MinChunks <= 0 {
		opts.MinChunks = 3
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = 10
	}

	perSource := opts.MaxStories / len(sources)
	if perSource < 1 {
		perSource = 1
	}

	results := make([][]story.Story, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			stories, err := e.extractFromSource(ctx, src, perSource, opts)
			if err != nil {
				return fmt.Errorf("extracting %s stories: %w", src.contentType, err)
			}
			results[i] = stories
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stories []story.Story
	for _, batch := range results {
		stories = append(stories, batch...)
	}

	if opts.Timeline != "" {
		kept := stories[:0]
		for _, st := range stories {
			if st.Timeline == opts.Timeline {
				kept = append(kept, st)
			}
		}
		stories = kept
	}

	if len(stories) > opts.MaxStories {
		stories = stories[:opts.MaxStories]
	}
	return stories, nil
}

func (e *Extractor) extractFromSource(ctx context.Context, src source, maxStories int, opts Options) ([]story.Story, error) {
	chunks, err := e.store.Query(ctx, src.seedText, store.Filters{
		ContentTypes: src.typeFilters,
		DJ:           opts.DJ,
		MaxResults:   e.limit,
	})
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	groups := groupByTitle(chunks)

	var stories []story.Story
	for _, group := range groups {
		if len(group.chunks) < opts.MinChunks {
			continue
		}
		capped := group.chunks
		if len(capped) > opts.MaxChunks {
			capped = capped[:opts.MaxChunks]
		}
		st, ok := e.chunksToStory(group.title, capped, src.contentType)
		if !ok {
			continue
		}
		stories = append(stories, st)
		if len(stories) >= maxStories {
			break
		}
	}
	return stories, nil
}

type chunkGroup struct {
	title  string
	chunks []store.Chunk
}

// groupByTitle buckets chunks by their source page title, largest groups
// first. Ties break on title so runs are deterministic.
func groupByTitle(chunks []store.Chunk) []chunkGroup {
	byTitle := make(map[string][]store.Chunk)
	for _, chunk := range chunks {
		title := chunk.Metadata.WikiTitle()
		if title == "" {
			title = "unknown"
		}
		byTitle[title] = append(byTitle[title], chunk)
	}

	groups := make([]chunkGroup, 0, len(byTitle))
	for title, group := range byTitle {
		groups = append(groups, chunkGroup{title: title, chunks: group})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].chunks) != len(groups[j].chunks) {
			return len(groups[i].chunks) > len(groups[j].chunks)
		}
		return groups[i].title < groups[j].title
	})
	return groups
}

// chunksToStory assembles one story from a titled chunk group. Any failure
// here (empty group, invalid structure, gate rejection) skips the group
// without failing the extraction run.
func (e *Extractor) chunksToStory(title string, chunks []store.Chunk, contentType string) (story.Story, bool) {
	if len(chunks) == 0 {
		return story.Story{}, false
	}

	acts := e.buildActs(chunks)
	if len(acts) == 0 {
		return story.Story{}, false
	}

	meta := chunks[0].Metadata
	factions := extractFactions(chunks)

	st := story.Story{
		ID:       storyID(contentType, title),
		Title:    title,
		Timeline: determineTimeline(chunks, contentType),

		Acts:    acts,
		Summary: summarize(chunks),

		ContentType: contentType,
		Themes:      extractThemes(chunks),
		Factions:    factions,
		Locations:   extractLocations(chunks),
		Characters:  extractCharacters(chunks),

		Era:     meta.Era(),
		Region:  meta.Region(),
		YearMin: meta.YearMin(),
		YearMax: meta.YearMax(),

		DJCompatible:  determineDJCompatibility(meta.Era()),
		KnowledgeTier: determineKnowledgeTier(meta),

		SourceTitles: []string{title},
		ExtractedAt:  time.Now(),

		EstimatedBroadcasts: len(acts) * 2,
		Priority:            0.5,
	}

	if err := st.Validate(); err != nil {
		e.logger.Warn("skipping malformed story group", "title", title, "error", err)
		return story.Story{}, false
	}

	if e.gate != nil {
		score, ok := e.gate.Admit(&st)
		if !ok {
			e.logger.Debug("story rejected by admission gate",
				"title", title, "timeline", st.Timeline, "score", score)
			return story.Story{}, false
		}
	}

	return st, true
}

func storyID(contentType, title string) string {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "_"))
	return fmt.Sprintf("story_%s_%s", contentType, slug)
}

func summarize(chunks []store.Chunk) string {
	text := chunks[0].Text
	if len(text) > 300 {
		return text[:300] + "..."
	}
	return text
}
