package cachechain

// Stats counts lifetime Lookup hits/misses and evictions for a single
// Cache layer — the same three counters a single-level cache would
// expose, still meaningful for a chain layer regardless of the
// write-back semantics layered on top.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}
