// Package refill keeps a small bounded cache of validated quiz entries and
// replenishes it from the encyclopedia. At most one refill runs at a time;
// callers that need an entry while the cache is empty wait on the running
// refill instead of starting another.
//
// A refill runs two phases. The curated phase samples a fixed list of
// well-known people. The discovery phase picks random birth-year categories
// and tries unvetted article titles with a stricter content threshold.
package refill
