package domain

import "testing"

func TestKinds_UniqueNonEmpty(t *testing.T) {
	seen := map[Kind]bool{}
	for _, k := range Kinds() {
		if k == "" {
			t.Fatalf("empty kind in registry")
		}
		if seen[k] {
			t.Fatalf("duplicate kind %q", k)
		}
		seen[k] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 kinds, got %d", len(seen))
	}
}
