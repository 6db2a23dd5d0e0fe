package refill

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/portrait-quiz/internal/hint"
	"github.com/JakeFAU/portrait-quiz/internal/portrait"
	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

type fakeWiki struct {
	mu            sync.Mutex
	extracts      map[string]string
	extractErr    error
	members       []string
	membersErr    error
	extractCalls  map[string]int
	categoryCalls []string
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{extracts: map[string]string{}, extractCalls: map[string]int{}}
}

func (w *fakeWiki) Extract(_ context.Context, title string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.extractCalls[title]++
	if w.extractErr != nil {
		return "", w.extractErr
	}
	text, ok := w.extracts[title]
	if !ok {
		return "", errors.New("missing page")
	}
	return text, nil
}

func (w *fakeWiki) CategoryMembers(_ context.Context, category string, _ int) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.categoryCalls = append(w.categoryCalls, category)
	if w.membersErr != nil {
		return nil, w.membersErr
	}
	return append([]string(nil), w.members...), nil
}

func (w *fakeWiki) totalExtractCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for _, n := range w.extractCalls {
		total += n
	}
	return total
}

type fakeResolver struct {
	mu      sync.Mutex
	gate    chan struct{}
	missing map[string]bool
	panicOn string
	calls   map[string]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{missing: map[string]bool{}, calls: map[string]int{}}
}

func (r *fakeResolver) Resolve(ctx context.Context, title string) (portrait.Result, error) {
	r.mu.Lock()
	r.calls[title]++
	gate, missing, panicOn := r.gate, r.missing[title], r.panicOn
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return portrait.Result{}, ctx.Err()
		}
	}
	if title == panicOn {
		panic("resolver exploded")
	}
	if missing {
		return portrait.Result{}, portrait.ErrNotFound
	}
	return portrait.Result{
		Title:    title,
		URL:      "https://upload.example/" + strings.ReplaceAll(title, " ", "_") + ".jpg",
		Strategy: "thumbnail",
	}, nil
}

type fakeChecker struct {
	mu       sync.Mutex
	unstable map[string]bool
}

func (c *fakeChecker) Check(_ context.Context, rawURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unstable[rawURL] {
		return &portrait.ProbeError{URL: rawURL, Attempt: 3, Reason: "status 503"}
	}
	return nil
}

type scheduled struct {
	delay time.Duration
	fn    func()
	timer *fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	queue []scheduled
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (*fakeClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) quiz.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{}
	c.queue = append(c.queue, scheduled{delay: d, fn: f, timer: timer})
	return timer
}

func (c *fakeClock) pending() []scheduled {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]scheduled(nil), c.queue...)
}

// fire runs the oldest scheduled callback unless it was stopped.
func (c *fakeClock) fire() bool {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return false
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	c.mu.Unlock()

	next.timer.mu.Lock()
	stopped := next.timer.stopped
	next.timer.mu.Unlock()
	if stopped {
		return false
	}
	next.fn()
	return true
}

type fakeArchive struct {
	mu      sync.Mutex
	entries []quiz.ArchivedEntry
}

func (a *fakeArchive) RecordEntry(_ context.Context, e quiz.ArchivedEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n), nil
}

func testConfig() Config {
	return Config{
		Capacity:            3,
		CuratedSample:       5,
		CuratedMinExtract:   30,
		DiscoveryAttempts:   3,
		DiscoveryCandidates: 10,
		DiscoveryMinExtract: 300,
		DiscoveryPageLimit:  50,
		CategoryFormat:      "분류:%d년 태어남",
		YearMin:             500,
		YearMax:             1940,
		CriticalLow:         2,
		RetryDelay:          30 * time.Second,
		DescriptionMaxRunes: 300,
	}
}

type harness struct {
	svc      *Service
	wiki     *fakeWiki
	resolver *fakeResolver
	checker  *fakeChecker
	clock    *fakeClock
}

func newHarness(cfg Config, opts ...Option) *harness {
	h := &harness{
		wiki:     newFakeWiki(),
		resolver: newFakeResolver(),
		checker:  &fakeChecker{unstable: map[string]bool{}},
		clock:    newFakeClock(),
	}
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	h.svc = NewService(cfg, h.wiki, h.resolver, h.checker, hint.New(hint.Config{MaxRunes: 120, Marker: "○○"}), h.clock, opts...)
	return h
}

func longText(runes int) string {
	return strings.Repeat("가", runes)
}
