package refill

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/logging"
	"github.com/JakeFAU/portrait-quiz/internal/metrics"
	"github.com/JakeFAU/portrait-quiz/internal/portrait"
	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

// ErrCacheEmpty is returned by Next when no entry could be produced.
var ErrCacheEmpty = errors.New("refill: no quiz entries available")

// Encyclopedia supplies biography text and category listings.
type Encyclopedia interface {
	Extract(ctx context.Context, title string) (string, error)
	CategoryMembers(ctx context.Context, category string, limit int) ([]string, error)
}

// Resolver finds a portrait for a title.
type Resolver interface {
	Resolve(ctx context.Context, title string) (portrait.Result, error)
}

// Masker turns a biography extract into a hint.
type Masker interface {
	Mask(title, extract string) string
}

// Config governs the cache and both refill phases.
type Config struct {
	Capacity            int
	CuratedNames        []string
	CuratedSample       int
	CuratedMinExtract   int
	DiscoveryAttempts   int
	DiscoveryCandidates int
	DiscoveryMinExtract int
	DiscoveryPageLimit  int
	CategoryFormat      string
	YearMin             int
	YearMax             int
	CriticalLow         int
	RetryDelay          time.Duration
	DescriptionMaxRunes int
}

// Task is a handle on a refill. Done is closed when the refill ends.
type Task struct {
	done chan struct{}
}

// Done returns a channel closed once the refill has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

var completedTask = func() *Task {
	t := &Task{done: make(chan struct{})}
	close(t.done)
	return t
}()

// Service owns the entry cache and the single in-flight refill.
type Service struct {
	cfg      Config
	wiki     Encyclopedia
	resolver Resolver
	checker  portrait.Checker
	masker   Masker
	clock    quiz.Clock
	archive  quiz.Archive
	ids      quiz.IDGenerator
	rng      *rand.Rand
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	cache  *Cache
	task   *Task
	retry  quiz.Timer
	closed bool
}

// Option customizes a Service.
type Option func(*Service)

// WithArchive records every accepted entry. ids names archive rows.
func WithArchive(archive quiz.Archive, ids quiz.IDGenerator) Option {
	return func(s *Service) {
		s.archive = archive
		s.ids = ids
	}
}

// WithRand fixes the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wires a Service. checker re-validates resolved images before
// they are cached.
func NewService(
	cfg Config,
	wiki Encyclopedia,
	resolver Resolver,
	checker portrait.Checker,
	masker Masker,
	clock quiz.Clock,
	opts ...Option,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:      cfg,
		wiki:     wiki,
		resolver: resolver,
		checker:  checker,
		masker:   masker,
		clock:    clock,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // sampling only
		logger:   zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
		cache:    NewCache(cfg.Capacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("refill")
	return s
}

// Start optionally warms the cache in the background.
func (s *Service) Start(warm bool) {
	if warm {
		s.TriggerRefill()
	}
}

// Close stops any scheduled retry, cancels the running refill and waits for
// it to return.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// Len returns the number of cached entries.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// TriggerRefill starts a refill unless one is running or the cache is full.
// It returns the running refill's handle when there is one, so concurrent
// callers share a single refill.
func (s *Service) TriggerRefill() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		return s.task
	}
	if s.closed || s.cache.Full() {
		return completedTask
	}
	t := &Task{done: make(chan struct{})}
	s.task = t
	s.wg.Add(1)
	go s.run(t)
	return t
}

// Next pops the oldest entry. When the cache is empty it waits for a refill
// (starting one if needed) and tries once more. ErrCacheEmpty means the
// refill produced nothing or ctx expired first.
func (s *Service) Next(ctx context.Context) (quiz.Entry, error) {
	if e, ok := s.pop(); ok {
		metrics.ObserveServe("hit")
		s.afterServe()
		return e, nil
	}

	t := s.TriggerRefill()
	select {
	case <-t.Done():
	case <-ctx.Done():
		metrics.ObserveServe("empty")
		return quiz.Entry{}, fmt.Errorf("%w: %w", ErrCacheEmpty, ctx.Err())
	}

	if e, ok := s.pop(); ok {
		metrics.ObserveServe("waited")
		s.afterServe()
		return e, nil
	}
	metrics.ObserveServe("empty")
	return quiz.Entry{}, ErrCacheEmpty
}

func (s *Service) pop() (quiz.Entry, bool) {
	s.mu.Lock()
	e, ok := s.cache.Pop()
	n := s.cache.Len()
	s.mu.Unlock()
	if ok {
		metrics.SetCacheEntries(n)
	}
	return e, ok
}

func (s *Service) afterServe() {
	if s.Len() < s.cfg.Capacity {
		s.TriggerRefill()
	}
}

func (s *Service) run(t *Task) {
	defer s.wg.Done()
	start := s.clock.Now()
	outcome := "complete"
	added := 0

	defer func() {
		if rec := recover(); rec != nil {
			logging.LogPanic(s.logger, "refill", rec)
			outcome = "panic"
		}
		s.finish(t, outcome, added, s.clock.Now().Sub(start))
	}()

	var err error
	added, err = s.refill(s.ctx)
	if err != nil {
		outcome = "aborted"
		s.logger.Warn("refill aborted", zap.Error(err), zap.Int("added", added))
	}
}

func (s *Service) finish(t *Task, outcome string, added int, elapsed time.Duration) {
	s.mu.Lock()
	s.task = nil
	n := s.cache.Len()
	scheduled := false
	if !s.closed && n < s.cfg.CriticalLow && s.retry == nil {
		s.retry = s.clock.AfterFunc(s.cfg.RetryDelay, s.retryRefill)
		scheduled = true
	}
	s.mu.Unlock()

	metrics.SetCacheEntries(n)
	metrics.ObserveRefill(outcome, elapsed)
	s.logger.Info("refill finished",
		zap.String("outcome", outcome),
		zap.Int("added", added),
		zap.Int("cached", n),
		zap.Duration("elapsed", elapsed),
		zap.Bool("retry_scheduled", scheduled),
	)
	close(t.done)
}

func (s *Service) retryRefill() {
	defer logging.RecoverPanic(s.logger, "refill retry")
	s.mu.Lock()
	s.retry = nil
	s.mu.Unlock()
	s.TriggerRefill()
}

func (s *Service) isFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Full()
}

func (s *Service) isCached(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Contains(title)
}

// admit appends e unless the cache filled up or already holds the title.
func (s *Service) admit(e quiz.Entry) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache.Contains(e.Name) {
		return s.cache.Len(), false
	}
	ok := s.cache.Push(e)
	return s.cache.Len(), ok
}
