// Command storycast runs the narrative engine for a broadcast session: it
// loads the persisted story state, optionally extracts fresh stories from a
// chunk file into the pools, runs a number of broadcast ticks, prints each
// tick's woven context, and saves the state back to disk.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vampirenirmal/storycast/internal/config"
	"github.com/vampirenirmal/storycast/internal/escalate"
	"github.com/vampirenirmal/storycast/internal/extract"
	"github.com/vampirenirmal/storycast/internal/scheduler"
	"github.com/vampirenirmal/storycast/internal/state"
	"github.com/vampirenirmal/storycast/internal/storage"
	"github.com/vampirenirmal/storycast/internal/store"
	"github.com/vampirenirmal/storycast/internal/story"
	"github.com/vampirenirmal/storycast/internal/weaver"
	"github.com/vampirenirmal/storycast/internal/weight"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storycast: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to config YAML (defaults apply when empty)")
		chunksPath = flag.String("chunks", "", "JSON chunk file to extract stories from before ticking")
		dj         = flag.String("dj", "", "persona to filter extraction for")
		ticks      = flag.Int("ticks", 1, "number of broadcast ticks to run")
		reset      = flag.Bool("reset", false, "wipe persisted state before running")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sessionID := uuid.NewString()
	logger.Info("session starting", "session_id", sessionID, "world", cfg.World)

	ctx := context.Background()

	fs := storage.NewFileSystem(filepath.Dir(cfg.Persistence.Path))
	st := state.New(fs, filepath.Base(cfg.Persistence.Path), logger)
	if err := st.Load(ctx); err != nil {
		return fmt.Errorf("loading story state: %w", err)
	}
	if *reset {
		st.Reset()
		logger.Info("story state reset")
	}

	scorer := weight.NewScorer()
	gate := weight.NewGate(scorer, cfg.Admission)

	if *chunksPath != "" {
		if err := extractInto(ctx, st, gate, cfg, *chunksPath, *dj, logger); err != nil {
			return err
		}
	}

	sched := scheduler.New(st, cfg.Cadence, scheduler.WithLogger(logger))
	wv := weaver.New(st, weaver.WithCallbackProbability(cfg.Weaver.CallbackProbability))
	esc := escalate.New(st, cfg.Escalation, escalate.WithLogger(logger))

	for i := 0; i < *ticks; i++ {
		beats := sched.BeatsForBroadcast()
		woven := wv.Weave(beats)

		fmt.Printf("=== Tick %d: %s ===\n", sched.Tick(), weaver.Summary(beats))
		if woven.ContextForLLM != "" {
			fmt.Println(woven.ContextForLLM)
			fmt.Println()
		}

		checkEscalations(st, esc, logger)
	}

	printStatus(sched.Status())

	if err := st.Save(ctx); err != nil {
		return fmt.Errorf("saving story state: %w", err)
	}
	logger.Info("session complete", "session_id", sessionID, "ticks", *ticks)
	return nil
}

// extractInto loads chunks from a JSON file, runs story extraction, and
// pools the admitted stories.
func extractInto(ctx context.Context, st *state.State, gate *weight.Gate, cfg *config.Config, path, dj string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading chunk file: %w", err)
	}
	var chunks []store.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("parsing chunk file: %w", err)
	}

	querier := store.NewRateLimitedStore(
		store.NewMemoryStore(chunks),
		cfg.Store.RequestsPerMinute,
		cfg.Store.Burst,
	)
	extractor := extract.New(querier, gate, cfg.Keywords, cfg.Extraction.QueryLimit, logger)

	stories, err := extractor.ExtractStories(ctx, extract.Options{
		MaxStories: cfg.Extraction.MaxStories,
		MinChunks:  cfg.Extraction.MinChunks,
		MaxChunks:  cfg.Extraction.MaxChunks,
		DJ:         dj,
	})
	if err != nil {
		return fmt.Errorf("extracting stories: %w", err)
	}

	for _, s := range stories {
		st.AddToPool(s)
	}
	logger.Info("stories pooled", "count", len(stories), "source", path)
	return nil
}

// checkEscalations promotes any active story that passes the escalation
// gates: the original is archived as completed and the promoted story joins
// the next timeline's pool.
func checkEscalations(st *state.State, esc *escalate.Engine, logger *slog.Logger) {
	for _, timeline := range story.Timelines() {
		active := st.Active(timeline)
		if active == nil || !esc.ShouldEscalate(active) {
			continue
		}
		promoted, ok := esc.Escalate(active)
		if !ok {
			continue
		}
		active.Status = story.StatusCompleted
		st.ArchiveStory(active)
		st.SetActive(timeline, nil)

		promoted.DJCompatible = active.Story.DJCompatible
		st.AddToPool(promoted)
		logger.Info("escalated story pooled",
			"story_id", promoted.ID, "timeline", promoted.Timeline)
	}
}

func printStatus(status scheduler.Status) {
	fmt.Printf("--- Status after tick %d ---\n", status.Tick)
	for _, timeline := range story.Timelines() {
		ts := status.Timelines[timeline]
		if ts.StoryID == "" {
			fmt.Printf("%-8s idle (pool: %d)\n", timeline, ts.PoolSize)
			continue
		}
		fmt.Printf("%-8s %s act %d (%.0f%% done, engagement %.2f, pool: %d)\n",
			timeline, ts.StoryID, ts.ActNumber, ts.Progress, ts.Engagement, ts.PoolSize)
	}
}
