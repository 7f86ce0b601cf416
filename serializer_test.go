package cachechain

import "testing"

type point struct {
	X, Y int
}

func TestJSONSerializerRoundTrip(t *testing.T) {
	var s JSONSerializer[point]

	raw, err := s.Marshal(point{X: 3, Y: 4})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := s.Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != (point{X: 3, Y: 4}) {
		t.Fatalf("got %+v, want {3 4}", got)
	}
}
