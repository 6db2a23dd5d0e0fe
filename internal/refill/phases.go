package refill

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/hint"
	"github.com/JakeFAU/portrait-quiz/internal/metrics"
	"github.com/JakeFAU/portrait-quiz/internal/portrait"
	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

const (
	phaseCurated   = "curated"
	phaseDiscovery = "discovery"
)

// refill runs the curated phase and then, if room remains, the discovery
// phase. Only cancellation of ctx ends it early with an error.
func (s *Service) refill(ctx context.Context) (int, error) {
	added, err := s.curatedPhase(ctx)
	if err != nil || s.isFull() {
		return added, err
	}
	more, err := s.discoveryPhase(ctx)
	return added + more, err
}

func (s *Service) curatedPhase(ctx context.Context) (int, error) {
	names := append([]string(nil), s.cfg.CuratedNames...)
	s.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	if len(names) > s.cfg.CuratedSample {
		names = names[:s.cfg.CuratedSample]
	}

	added := 0
	for _, name := range names {
		if s.isFull() {
			break
		}
		ok, err := s.tryCandidate(ctx, name, quiz.SourceCurated, s.cfg.CuratedMinExtract)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (s *Service) discoveryPhase(ctx context.Context) (int, error) {
	added := 0
	for attempt := 1; attempt <= s.cfg.DiscoveryAttempts; attempt++ {
		if s.isFull() {
			break
		}
		if err := ctx.Err(); err != nil {
			return added, err
		}

		year := s.cfg.YearMin
		if span := s.cfg.YearMax - s.cfg.YearMin + 1; span > 1 {
			year += s.rng.IntN(span)
		}
		category := fmt.Sprintf(s.cfg.CategoryFormat, year)
		titles, err := s.wiki.CategoryMembers(ctx, category, s.cfg.DiscoveryPageLimit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return added, ctxErr
			}
			s.logger.Warn("category listing failed",
				zap.String("category", category),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		titles = FilterDiscoveryTitles(titles)
		s.rng.Shuffle(len(titles), func(i, j int) { titles[i], titles[j] = titles[j], titles[i] })
		if len(titles) > s.cfg.DiscoveryCandidates {
			titles = titles[:s.cfg.DiscoveryCandidates]
		}
		s.logger.Debug("discovery attempt",
			zap.String("category", category),
			zap.Int("candidates", len(titles)),
		)

		for _, title := range titles {
			if s.isFull() {
				break
			}
			ok, err := s.tryCandidate(ctx, title, quiz.SourceDiscovery, s.cfg.DiscoveryMinExtract)
			if err != nil {
				return added, err
			}
			if ok {
				added++
			}
		}
	}
	return added, nil
}

// tryCandidate runs extract, resolve, re-check and mask for one title. It
// reports whether an entry was cached; the error is non-nil only when ctx
// is done.
func (s *Service) tryCandidate(ctx context.Context, title string, source quiz.Source, minExtract int) (bool, error) {
	phase := string(source)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.isCached(title) {
		metrics.ObserveCandidate(phase, "duplicate")
		return false, nil
	}

	extract, err := s.wiki.Extract(ctx, title)
	if err != nil {
		return s.skip(ctx, phase, title, "extract_error", err)
	}
	if utf8.RuneCountInString(extract) < minExtract {
		return s.skip(ctx, phase, title, "short_extract", nil)
	}

	res, err := s.resolver.Resolve(ctx, title)
	if errors.Is(err, portrait.ErrNotFound) {
		return s.skip(ctx, phase, title, "no_image", nil)
	}
	if err != nil {
		return s.skip(ctx, phase, title, "resolve_error", err)
	}

	if err := s.checker.Check(ctx, res.URL); err != nil {
		return s.skip(ctx, phase, title, "unstable", err)
	}

	entry := quiz.Entry{
		Name:        title,
		Image:       res.URL,
		Hint:        s.masker.Mask(title, extract),
		Description: hint.Truncate(extract, s.cfg.DescriptionMaxRunes),
		Strategy:    res.Strategy,
		Source:      source,
		AcceptedAt:  s.clock.Now(),
	}
	n, ok := s.admit(entry)
	if !ok {
		metrics.ObserveCandidate(phase, "dropped")
		return false, nil
	}
	metrics.SetCacheEntries(n)
	metrics.ObserveCandidate(phase, "accepted")
	s.logger.Info("entry cached",
		zap.String("title", title),
		zap.String("phase", phase),
		zap.String("strategy", res.Strategy),
		zap.Int("cached", n),
	)
	s.record(ctx, entry)
	return true, nil
}

func (s *Service) skip(ctx context.Context, phase, title, reason string, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	metrics.ObserveCandidate(phase, reason)
	fields := []zap.Field{zap.String("title", title), zap.String("phase", phase), zap.String("reason", reason)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Debug("candidate skipped", fields...)
	return false, nil
}

func (s *Service) record(ctx context.Context, e quiz.Entry) {
	if s.archive == nil {
		return
	}
	var id string
	if s.ids != nil {
		if generated, err := s.ids.NewID(); err == nil {
			id = generated
		}
	}
	err := s.archive.RecordEntry(ctx, quiz.ArchivedEntry{
		ID:         id,
		Name:       e.Name,
		ImageURL:   e.Image,
		Strategy:   e.Strategy,
		Source:     e.Source,
		AcceptedAt: e.AcceptedAt,
	})
	if err != nil {
		s.logger.Warn("archive entry failed", zap.String("title", e.Name), zap.Error(err))
	}
}
