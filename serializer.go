package cachechain

import "encoding/json"

// Serializer converts between a value and the raw bytes a backing store
// persists. A chain's backing store is parameterized on one, mirroring
// how this ecosystem's object stores separate the storage mechanism
// from the wire format of what it stores.
type Serializer[V any] interface {
	Marshal(V) ([]byte, error)
	Unmarshal([]byte) (V, error)
}

// JSONSerializer is the default Serializer, using encoding/json. It is
// adequate for any V that round-trips through json.Marshal/Unmarshal;
// callers with tighter size or performance requirements can supply
// their own Serializer instead.
type JSONSerializer[V any] struct{}

func (JSONSerializer[V]) Marshal(v V) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer[V]) Unmarshal(raw []byte) (V, error) {
	var v V
	err := json.Unmarshal(raw, &v)
	return v, err
}
