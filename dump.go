package cachechain

import (
	"fmt"
	"strings"
)

// String renders this layer's entries in insertion order (oldest
// first), each annotated with its dirty flag — a debugging aid, not a
// stable serialization format.
func (c *Cache[V]) String() string {
	var b strings.Builder
	b.WriteString("Cache{")
	first := true
	for e := c.order.Back(); e != nil; e = e.Prev() {
		n := e.Value.(*node[V])
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s:(dirty=%t, %v)", n.key, n.entry.dirty, n.entry.value)
	}
	b.WriteString("}")
	return b.String()
}

// String renders the store's contents in sorted key order when open.
// A closed store reports its name and closed state without touching
// the filesystem.
func (s *BackingStore[V]) String() string {
	if s.db == nil {
		return fmt.Sprintf("BackingStore{%s, closed}", s.dbName)
	}

	items, err := s.Items()
	if err != nil {
		return fmt.Sprintf("BackingStore{%s, error: %v}", s.dbName, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "BackingStore{%s, ", s.dbName)
	for i, p := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%v", p.Key, p.Value)
	}
	b.WriteString("}")
	return b.String()
}
