package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thodel/outremer/internal/application/handlers"
	"github.com/thodel/outremer/internal/domain/ports"
	"github.com/thodel/outremer/internal/domain/services"
	"github.com/thodel/outremer/internal/infrastructure/cache"
	"github.com/thodel/outremer/internal/infrastructure/config"
	llm "github.com/thodel/outremer/internal/infrastructure/llm/openai"
	"github.com/thodel/outremer/internal/infrastructure/relationaldb/sqlite"
	"github.com/thodel/outremer/internal/infrastructure/wikidata"
	"github.com/thodel/outremer/internal/logging"
)

// reconcileCacheFile is the cache artifact inside the config directory.
const reconcileCacheFile = "reconcile_cache.json"

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and infrastructure stay internal.
type Deps struct {
	Config           *config.Config
	Log              *slog.Logger
	LinkHandler      *handlers.LinkHandler
	MergeHandler     *handlers.MergeHandler
	ReconcileHandler *handlers.ReconcileHandler
}

// depsOptions selects which dependency groups a command needs, so commands
// that never touch the database or the network don't pay for them.
type depsOptions struct {
	// heuristic forces the regex extractor even when an API key is set.
	heuristic bool
	// store opens the SQLite graph store.
	store bool
	// reconcile builds the Wikidata client and cache.
	reconcile bool
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(opts depsOptions, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	deps := &Deps{Config: cfg, Log: log}

	extractor, err := buildExtractor(cfg, opts.heuristic, log)
	if err != nil {
		return err
	}
	linker := services.NewLinker(services.MatcherConfig{
		MinScore: cfg.Matcher.MinScore,
		TopK:     cfg.Matcher.TopK,
		High:     cfg.Matcher.High,
		Medium:   cfg.Matcher.Medium,
		Low:      cfg.Matcher.Low,
	})
	deps.LinkHandler = handlers.NewLinkHandler(extractor, linker, log)

	var store ports.GraphStore
	if opts.store {
		repo, err := sqlite.NewRepository(cfg.SQLite)
		if err != nil {
			return fmt.Errorf("creating sqlite repository: %w", err)
		}
		defer repo.Close()
		store = repo
	}
	deps.MergeHandler = handlers.NewMergeHandler(services.NewMerger(log), store, log)

	if opts.reconcile {
		cachePath := filepath.Join(config.ConfigDir(cwd), reconcileCacheFile)
		fc, err := cache.Load(cachePath, log)
		if err != nil {
			return fmt.Errorf("loading reconciliation cache: %w", err)
		}

		kb := wikidata.NewClient(cfg.Wikidata, log)
		reconciler := services.NewReconciler(kb, fc, services.ReconcilerConfig{
			Limit:      cfg.Wikidata.Limit,
			CutoffYear: cfg.Wikidata.CutoffYear,
		}, log)
		deps.ReconcileHandler = handlers.NewReconcileHandler(reconciler, fc, log)
	}

	return fn(deps)
}

// buildExtractor picks the extraction backend: OpenAI when configured, the
// regex heuristic otherwise.
func buildExtractor(cfg *config.Config, forceHeuristic bool, log *slog.Logger) (ports.Extractor, error) {
	if forceHeuristic || cfg.LLM.APIKey == "" {
		if !forceHeuristic {
			log.Debug("no LLM API key configured, using heuristic extraction")
		}
		return services.NewHeuristicExtractor(), nil
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return client, nil
}
