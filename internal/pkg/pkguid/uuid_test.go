package pkguid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerate(t *testing.T) {
	gen := NewUUID()
	id := gen.Generate()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid uuid, got %q", id)
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID(NewUUID().Generate()) {
		t.Fatalf("expected generated id to be accepted")
	}
	for _, bad := range []string{"", "session-1", "urn:uuid:0190f1c4-5a3b-7c2d-8e9f-0a1b2c3d4e5f", "0190f1c45a3b7c2d8e9f0a1b2c3d4e5f"} {
		if IsUUID(bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
