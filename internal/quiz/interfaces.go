package quiz

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Clock abstracts time so refill scheduling and probe pauses are testable.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of *time.Timer the service needs.
type Timer interface {
	Stop() bool
}

// IDGenerator produces request and error IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Archive persists accepted entries for later audit.
type Archive interface {
	RecordEntry(ctx context.Context, entry ArchivedEntry) error
}
