package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/services"
	"github.com/ersonp/lineage-core/internal/infrastructure/config"
	"github.com/ersonp/lineage-core/internal/infrastructure/logging"
	"github.com/ersonp/lineage-core/internal/infrastructure/metrics"
	"github.com/ersonp/lineage-core/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config           *config.Config
	Trees            *config.TreesConfig
	User             entities.UserContext
	FactHandler      *handlers.FactHandler
	BiographyHandler *handlers.BiographyHandler
	EventsHandler    *handlers.EventsHandler
	TaxonomyHandler  *handlers.TaxonomyHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
	resolver     *services.ResolverService
	logger       *zap.Logger
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
// Used by commands that need direct repository or service access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	if _, err := trees.Get(globalTree); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // stderr sync errors are not actionable

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.DatabasePath(cwd, globalTree)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	// Ensure schema exists
	ctx := context.Background()
	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if showMetrics {
		defer printMetrics(registry)
	}

	logger = logger.With(zap.String("tree", globalTree))
	resolver := services.NewResolverService(relationalDB, logger,
		services.WithMetrics(m),
		services.WithRepairOnRead(cfg.Resolver.RepairEnabled()),
	)
	citations := services.NewCitationService(relationalDB, m, logger)

	user := cfg.User
	if globalUser != "" {
		user = globalUser
	}

	deps := &internalDeps{
		Deps: Deps{
			Config:           cfg,
			Trees:            trees,
			User:             entities.UserContext{UserName: user},
			FactHandler:      handlers.NewFactHandler(resolver, citations),
			BiographyHandler: handlers.NewBiographyHandler(resolver, citations),
			EventsHandler:    handlers.NewEventsHandler(resolver, relationalDB),
			TaxonomyHandler:  handlers.NewTaxonomyHandler(),
		},
		relationalDB: relationalDB,
		resolver:     resolver,
		logger:       logger,
	}

	return fn(deps)
}

// printMetrics writes every non-zero counter and histogram count.
func printMetrics(registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gathering metrics: %v\n", err)
		return
	}
	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			}
			if value == 0 {
				continue
			}
			label := mf.GetName()
			for _, lp := range metric.GetLabel() {
				label += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s %g", label, value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(os.Stderr, l)
	}
}
