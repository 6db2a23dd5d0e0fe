package portrait

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/metrics"
)

// ErrNotFound means no strategy produced a usable image.
var ErrNotFound = errors.New("portrait: no stable image found")

// Checker verifies a candidate URL.
type Checker interface {
	Check(ctx context.Context, rawURL string) error
}

// Result is an accepted image.
type Result struct {
	Title    string
	URL      string
	Strategy string
	Origin   string
}

// Resolver runs strategies in order and accepts the first candidate that is
// both a valid image URL and stable.
type Resolver struct {
	strategies []Strategy
	checker    Checker
	logger     *zap.Logger
}

// NewResolver builds a Resolver.
func NewResolver(strategies []Strategy, checker Checker, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{strategies: strategies, checker: checker, logger: logger.Named("resolver")}
}

// Resolve finds a portrait for title. ErrNotFound is an ordinary outcome;
// strategy failures are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, title string) (Result, error) {
	req := Request{Title: title, Aliases: MakeAliases(title)}
	rejected := make(map[string]struct{})

	for _, strategy := range r.strategies {
		var (
			found    Result
			accepted bool
		)
		err := strategy.Candidates(ctx, req, func(c Candidate) bool {
			if !IsValidImageURL(c.URL) {
				return true
			}
			if _, seen := rejected[c.URL]; seen {
				return true
			}
			if err := r.checker.Check(ctx, c.URL); err != nil {
				rejected[c.URL] = struct{}{}
				r.logger.Debug("candidate unstable",
					zap.String("title", title),
					zap.String("strategy", strategy.Name()),
					zap.String("url", c.URL),
					zap.Error(err),
				)
				return ctx.Err() == nil
			}
			found = Result{Title: title, URL: c.URL, Strategy: strategy.Name(), Origin: c.Origin}
			accepted = true
			return false
		})
		if accepted {
			metrics.ObserveResolution(found.Strategy)
			return found, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if err != nil {
			r.logger.Warn("strategy failed",
				zap.String("title", title),
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
		}
	}
	metrics.ObserveResolution("")
	return Result{}, ErrNotFound
}
