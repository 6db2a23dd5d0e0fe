// Package portrait resolves a person's article title to a photographic
// portrait URL. Strategies propose candidates in priority order; each
// candidate must pass the URL validator and then a repeated stability probe
// before the resolver accepts it.
package portrait
