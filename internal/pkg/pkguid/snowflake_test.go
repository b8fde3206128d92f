package pkguid

import "testing"

func TestRandomNodeIDStaysInTenBits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		id, err := randomNodeID()
		if err != nil {
			t.Fatalf("randomNodeID: %v", err)
		}
		if id < 0 || id > 1023 {
			t.Fatalf("expected id within 0..1023, got %d", id)
		}
	}
}

func TestSnowflakeGeneratesIncreasingIDs(t *testing.T) {
	t.Parallel()

	gen, err := NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	prev := gen.Generate()
	for i := 0; i < 100; i++ {
		next := gen.Generate()
		if next <= prev {
			t.Fatalf("expected strictly increasing ids, got %d after %d", next, prev)
		}
		prev = next
	}
}
