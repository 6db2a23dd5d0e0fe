package portrait

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JakeFAU/portrait-quiz/internal/metrics"
)

// ProbeError reports the first failed stability probe.
type ProbeError struct {
	URL     string
	Attempt int
	Reason  string
	Err     error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %d of %s: %s: %v", e.Attempt, e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("probe %d of %s: %s", e.Attempt, e.URL, e.Reason)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Sleeper pauses between probes.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// StabilityConfig tunes the probe protocol.
type StabilityConfig struct {
	Attempts     int
	ProbeTimeout time.Duration
	Pause        time.Duration
}

// StabilityChecker confirms that an image URL answers consistently. Every
// probe must return 200 with an image content type.
type StabilityChecker struct {
	cfg     StabilityConfig
	client  *http.Client
	headers http.Header
	sleeper Sleeper
}

// NewStabilityChecker builds a checker. headers are sent with every probe.
func NewStabilityChecker(cfg StabilityConfig, client *http.Client, headers http.Header, sleeper Sleeper) *StabilityChecker {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &StabilityChecker{cfg: cfg, client: client, headers: headers, sleeper: sleeper}
}

// Check probes rawURL the configured number of times and returns a
// *ProbeError on the first failure. The check itself is never retried.
func (s *StabilityChecker) Check(ctx context.Context, rawURL string) error {
	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		if attempt > 1 && s.cfg.Pause > 0 && s.sleeper != nil {
			if err := s.sleeper.Sleep(ctx, s.cfg.Pause); err != nil {
				metrics.ObserveStability(false)
				return &ProbeError{URL: rawURL, Attempt: attempt, Reason: "interrupted", Err: err}
			}
		}
		if reason, err := s.probe(ctx, rawURL); reason != "" {
			metrics.ObserveStability(false)
			return &ProbeError{URL: rawURL, Attempt: attempt, Reason: reason, Err: err}
		}
	}
	metrics.ObserveStability(true)
	return nil
}

func (s *StabilityChecker) probe(ctx context.Context, rawURL string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "invalid request", err
	}
	for k, vals := range s.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "request failed", err
	}
	defer resp.Body.Close() //nolint:errcheck // body is not read

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("status %d", resp.StatusCode), nil
	}
	ct := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if !strings.HasPrefix(ct, "image/") {
		return fmt.Sprintf("content type %q", ct), nil
	}
	return "", nil
}
