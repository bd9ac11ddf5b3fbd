package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()
	if a == b {
		t.Fatal("expected distinct ids")
	}

	parsed, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("generated id is not a uuid: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
}

func TestSnowflakeGenerate(t *testing.T) {
	g, err := NewSnowflakeNode(1)
	if err != nil {
		t.Fatalf("NewSnowflakeNode() error = %v", err)
	}

	prev := g.Generate()
	for range 100 {
		next := g.Generate()
		if next <= prev {
			t.Fatalf("ids must increase: %d after %d", next, prev)
		}
		prev = next
	}

	if _, err := NewSnowflakeNode(4096); err == nil {
		t.Fatal("expected error for node outside 0-1023")
	}
}

func TestNewSnowflake(t *testing.T) {
	g, err := NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}
	if g.Generate() <= 0 {
		t.Fatal("expected positive id")
	}
}
