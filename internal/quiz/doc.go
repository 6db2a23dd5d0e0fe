// Package quiz defines the core types shared across the quiz subsystems:
// the cached quiz entry, the fetch request/response pair used by the page
// fetcher, and the small interfaces (clock, ids, archive) that the refill
// engine and HTTP layer depend on.
package quiz
