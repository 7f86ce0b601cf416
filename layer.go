package cachechain

/*
layer.go models the "either a Cache or a Backing Store, or nothing" lower
neighbour every Cache layer has, and the chain-wide helpers that need to
branch on which of those three shapes they're looking at.

Go has no tagged unions, but it has interfaces and type switches, which is
the idiomatic stand-in: lowerLayer[V] is a marker interface implemented by
exactly *Cache[V] and *BackingStore[V]; a nil lowerLayer[V] value is the
explicit "no lower neighbour" case. Every place the spec says "match on
whether the lower layer is a Cache, a Backing Store, or absent" becomes a
type switch over this interface — there is no attribute-probing or
duck-typed guessing involved, which resolves one of the open questions in
the original design notes outright.
*/

type lowerLayer[V any] interface {
	isLowerLayer()
}

func (*Cache[V]) isLowerLayer()        {}
func (*BackingStore[V]) isLowerLayer() {}

// terminal walks forward-references from c until it reaches a layer with
// no lower neighbour, returning the backing store found there (if any).
// This is the "lowest-memory resolution" helper from the chain protocol:
// it answers "is the terminal layer a store?" and is used by
// WithOpenBackingStore to find the store to open and close. The
// clean-snapshot refresh walks the chain itself.
func (c *Cache[V]) terminal() (*BackingStore[V], bool) {
	var cur lowerLayer[V] = c.lower
	for {
		switch l := cur.(type) {
		case nil:
			return nil, false
		case *Cache[V]:
			cur = l.lower
		case *BackingStore[V]:
			return l, true
		default:
			return nil, false
		}
	}
}

// notifyPendingDirty walks upward from a backing store, setting the
// pending dirty-mark slot on every cache layer above it to key. It is the
// upward half of the notification protocol described for
// BackingStore.PopItem: the store has just evicted key, and every upper
// cache holding a clean shadow of it must be told so its *next* insertion
// flips that shadow dirty again.
func (s *BackingStore[V]) notifyPendingDirty(key string) {
	for c := s.upper; c != nil; c = c.upper {
		c.pendingDirty = &key
	}
}
