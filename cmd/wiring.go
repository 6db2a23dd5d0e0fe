package cmd

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/clock/system"
	"github.com/JakeFAU/portrait-quiz/internal/config"
	collyfetcher "github.com/JakeFAU/portrait-quiz/internal/fetcher/colly"
	"github.com/JakeFAU/portrait-quiz/internal/hint"
	"github.com/JakeFAU/portrait-quiz/internal/id/uuid"
	"github.com/JakeFAU/portrait-quiz/internal/policy/ratelimit"
	"github.com/JakeFAU/portrait-quiz/internal/portrait"
	"github.com/JakeFAU/portrait-quiz/internal/refill"
	"github.com/JakeFAU/portrait-quiz/internal/storage/postgres"
	"github.com/JakeFAU/portrait-quiz/internal/wiki"
)

// components holds the long-lived collaborators built from config.
type components struct {
	clock    *system.Clock
	ids      *uuid.Generator
	wiki     *wiki.Client
	checker  *portrait.StabilityChecker
	resolver *portrait.Resolver
	masker   *hint.Masker
	archive  *postgres.EntryStore
}

func buildComponents(ctx context.Context, cfg config.Config, logger *zap.Logger, withArchive bool) (*components, error) {
	limiter := ratelimit.New(ratelimit.Config{
		RPS:   cfg.Wiki.RateLimitRPS,
		Burst: cfg.Wiki.RateLimitBurst,
	})
	pages := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Wiki.UserAgent,
		Timeout:   cfg.Wiki.RequestTimeout,
	}, limiter)

	opts := []wiki.Option{
		wiki.WithLimiter(limiter),
		wiki.WithLogger(logger.Named("wiki")),
	}
	if cfg.Wiki.CacheTTL > 0 {
		cache, err := wiki.NewResponseCache(cfg.Wiki.CacheTTL, cfg.Wiki.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("wiki cache: %w", err)
		}
		opts = append(opts, wiki.WithCache(cache))
	}
	client := wiki.New(wiki.Config{
		APIURL:     cfg.Wiki.APIURL,
		PageURL:    cfg.Wiki.PageURL,
		UserAgent:  cfg.Wiki.UserAgent,
		Timeout:    cfg.Wiki.RequestTimeout,
		MaxRetries: cfg.Wiki.MaxRetries,
	}, pages, opts...)

	clk := system.New()
	checker := portrait.NewStabilityChecker(portrait.StabilityConfig{
		Attempts:     cfg.Stability.Attempts,
		ProbeTimeout: cfg.Stability.ProbeTimeout,
		Pause:        cfg.Stability.Pause,
	}, &http.Client{}, client.Headers(), clk)
	resolver := portrait.NewResolver(
		portrait.StandardStrategies(client, cfg.Wiki.ThumbSize, cfg.Wiki.ImageListLimit),
		checker,
		logger,
	)

	c := &components{
		clock:    clk,
		ids:      uuid.New(),
		wiki:     client,
		checker:  checker,
		resolver: resolver,
		masker:   hint.New(hint.Config{MaxRunes: cfg.Hint.MaxRunes, Marker: cfg.Hint.Marker}),
	}

	if withArchive && cfg.DB.DSN != "" {
		store, err := postgres.NewEntryStore(ctx, postgres.EntryStoreConfig{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("entry archive: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("entry archive: %w", err)
		}
		c.archive = store
	}
	return c, nil
}

func (c *components) Close() {
	if c.archive != nil {
		c.archive.Close()
	}
}

func (c *components) refillService(cfg config.Config, logger *zap.Logger) *refill.Service {
	opts := []refill.Option{refill.WithLogger(logger)}
	if c.archive != nil {
		opts = append(opts, refill.WithArchive(c.archive, c.ids))
	}
	return refill.NewService(refillConfig(cfg.Refill), c.wiki, c.resolver, c.checker, c.masker, c.clock, opts...)
}

func refillConfig(rc config.RefillConfig) refill.Config {
	return refill.Config{
		Capacity:            rc.Capacity,
		CuratedNames:        rc.CuratedNames,
		CuratedSample:       rc.CuratedSample,
		CuratedMinExtract:   rc.CuratedMinExtract,
		DiscoveryAttempts:   rc.DiscoveryAttempts,
		DiscoveryCandidates: rc.DiscoveryCandidates,
		DiscoveryMinExtract: rc.DiscoveryMinExtract,
		DiscoveryPageLimit:  rc.DiscoveryPageLimit,
		CategoryFormat:      rc.CategoryFormat,
		YearMin:             rc.YearMin,
		YearMax:             rc.YearMax,
		CriticalLow:         rc.CriticalLow,
		RetryDelay:          rc.RetryDelay,
		DescriptionMaxRunes: rc.DescriptionMaxRunes,
	}
}
