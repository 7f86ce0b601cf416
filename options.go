package cachechain

/*
Construction follows the functional options pattern — closures of the
form WithXxx(...) Option that mutate a private options struct — rather
than a large constructor parameter list, generalized here to carry the
richer set of choices a chain layer needs: capacity, bulk initial
contents, and the (mutually exclusive) lower neighbour.

Because Option is parameterized on V, a call site that gives no
V-carrying argument — WithCapacity, WithDBName, WithLogger — must name V
explicitly: cachechain.WithCapacity[string](4). Any option whose
argument already mentions V (WithInitValues, WithLowerCache, ...) lets
ordinary Go type inference fill it in from that argument instead.
*/

// Option configures a Cache[V] at construction time.
type Option[V any] func(*cacheOptions[V])

type cacheOptions[V any] struct {
	capacity    int
	capacitySet bool

	initPairs    []Pair[V]
	hasInitPairs bool
	initMap      map[string]V
	hasInitMap   bool

	lowerCache    *Cache[V]
	hasLowerCache bool
	lowerStore    *BackingStore[V]
	hasLowerStore bool
}

// WithCapacity sets the maximum number of entries this layer holds
// before it starts evicting. Default is 10 when omitted.
func WithCapacity[V any](n int) Option[V] {
	return func(o *cacheOptions[V]) {
		o.capacity = n
		o.capacitySet = true
	}
}

// WithInitValues seeds the layer with pairs, inserted in the given
// order via the ordinary insertion algorithm — each entry starts dirty,
// and a capacity too small for all of them will demote the earliest
// excess into whatever lower layer is configured.
func WithInitValues[V any](pairs []Pair[V]) Option[V] {
	return func(o *cacheOptions[V]) {
		o.initPairs = pairs
		o.hasInitPairs = true
	}
}

// WithInitValuesMap is WithInitValues for callers holding a plain map.
// Go's map iteration order is unspecified, so the resulting recency
// order among the seeded entries is likewise unspecified — use
// WithInitValues when that order matters.
func WithInitValuesMap[V any](m map[string]V) Option[V] {
	return func(o *cacheOptions[V]) {
		o.initMap = m
		o.hasInitMap = true
	}
}

// WithLowerCache wires another Cache as this layer's lower neighbour.
func WithLowerCache[V any](lower *Cache[V]) Option[V] {
	return func(o *cacheOptions[V]) {
		o.lowerCache = lower
		o.hasLowerCache = true
	}
}

// WithLowerStore wires a BackingStore as this layer's lower neighbour,
// making it (and every layer above it) part of a write-back chain with
// a persistent terminus.
func WithLowerStore[V any](lower *BackingStore[V]) Option[V] {
	return func(o *cacheOptions[V]) {
		o.lowerStore = lower
		o.hasLowerStore = true
	}
}

// StoreOption configures a BackingStore[V] at construction time.
type StoreOption[V any] func(*storeOptions[V])

type storeOptions[V any] struct {
	capacity    int
	capacitySet bool
	dbName      string
	logger      Logger
}

// WithStoreCapacity sets the maximum number of entries the backing
// store persists; Open, Set and SetCapacity evict through PopItem to
// stay within it. Default is 1000 when omitted.
func WithStoreCapacity[V any](n int) StoreOption[V] {
	return func(o *storeOptions[V]) {
		o.capacity = n
		o.capacitySet = true
	}
}

// WithDBName sets the on-disk database name; the resulting file is
// named "<name>.db" inside whatever directory Open is given.
func WithDBName[V any](name string) StoreOption[V] {
	return func(o *storeOptions[V]) {
		o.dbName = name
	}
}

// WithLogger attaches a structured logger. The default is a no-op
// logger, matching the rest of this ecosystem's convention of never
// requiring a caller to opt out of logging explicitly.
func WithLogger[V any](logger Logger) StoreOption[V] {
	return func(o *storeOptions[V]) {
		o.logger = logger
	}
}
