package postgres

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorProducesSortableUniqueIDs(t *testing.T) {
	gen := NewULIDGenerator()
	prev := gen.Generate()
	seen := map[string]struct{}{prev: {}}

	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		if _, err := ulid.ParseStrict(id); err != nil {
			t.Fatalf("invalid ulid %q: %v", id, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		if id <= prev {
			t.Fatalf("ids not increasing: %q after %q", id, prev)
		}
		seen[id] = struct{}{}
		prev = id
	}
}
