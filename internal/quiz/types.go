package quiz

import (
	"net/http"
	"time"
)

// Source records which refill phase produced an entry.
type Source string

// Entry sources.
const (
	SourceCurated   Source = "curated"
	SourceDiscovery Source = "discovery"
)

// Entry is one fully validated quiz item. Entries are immutable once cached.
type Entry struct {
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Hint        string    `json:"hint"`
	Description string    `json:"description"`
	Strategy    string    `json:"-"`
	Source      Source    `json:"-"`
	AcceptedAt  time.Time `json:"-"`
}

// ArchivedEntry is the persisted form of an accepted entry.
type ArchivedEntry struct {
	ID         string
	Name       string
	ImageURL   string
	Strategy   string
	Source     Source
	AcceptedAt time.Time
}

// FetchRequest describes a single page retrieval.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse captures the response of a page retrieval.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
