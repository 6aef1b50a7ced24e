package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := UUID("go-signage:module:image")
	second := UUID("go-signage:module:image")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected identical uuids, got %s and %s", first, second)
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
	if got := LegacyToken(""); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestTokensAreCompactAndDistinct(t *testing.T) {
	region := RegionToken("layout-a", 0)
	if len(region) != 32 {
		t.Fatalf("expected 32 char token, got %q", region)
	}
	if region == RegionToken("layout-a", 1) {
		t.Fatal("expected positions to produce distinct region tokens")
	}
	if WidgetToken(region, 0) == WidgetToken(region, 1) {
		t.Fatal("expected positions to produce distinct widget tokens")
	}
}

func TestModuleUUIDNormalizesType(t *testing.T) {
	if ModuleUUID(" Image ") != ModuleUUID("image") {
		t.Fatal("expected module uuid to ignore case and whitespace")
	}
}
