package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7_Unique(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool)
	for range 1000 {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("chk_", Default)
	id := gen()
	if !strings.HasPrefix(id, "chk_") {
		t.Errorf("id %q missing prefix", id)
	}
	if _, err := Parse(strings.TrimPrefix(id, "chk_")); err != nil {
		t.Errorf("suffix not a UUID: %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for invalid UUID")
	}
}
