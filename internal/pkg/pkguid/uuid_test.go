package pkguid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGeneratesV7(t *testing.T) {
	t.Parallel()

	id, err := uuid.Parse(NewUUID().Generate())
	if err != nil {
		t.Fatalf("expected parseable uuid: %v", err)
	}
	if id.Version() != 7 {
		t.Fatalf("expected version 7, got %d", id.Version())
	}
}

func TestUUIDGeneratesDistinctValues(t *testing.T) {
	t.Parallel()

	gen := NewUUID()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate uuid %q", id)
		}
		seen[id] = struct{}{}
	}
}
