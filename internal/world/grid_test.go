package world

import (
	"errors"
	"strings"
	"testing"
)

func TestNewGridAllWalkable(t *testing.T) {
	g, err := NewGrid(4, 3)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if g.WalkableCount() != 12 {
		t.Fatalf("WalkableCount = %d, want 12", g.WalkableCount())
	}
	if g.Spawn() != (Cell{X: 2, Y: 1}) {
		t.Fatalf("Spawn = %v, want (2,1)", g.Spawn())
	}
}

func TestNewGridRejectsBadSize(t *testing.T) {
	if _, err := NewGrid(0, 5); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := NewGrid(5, -1); err == nil {
		t.Fatal("expected error for negative height")
	}
}

func TestGridBounds(t *testing.T) {
	g, _ := NewGrid(3, 3)
	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"origin", 0, 0, true},
		{"far corner", 2, 2, true},
		{"negative x", -1, 0, false},
		{"past width", 3, 0, false},
		{"past height", 0, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IsInBounds(tt.x, tt.y); got != tt.want {
				t.Fatalf("IsInBounds(%d,%d) = %t, want %t", tt.x, tt.y, got, tt.want)
			}
			if !tt.want && g.IsWalkable(tt.x, tt.y) {
				t.Fatalf("IsWalkable(%d,%d) should be false out of bounds", tt.x, tt.y)
			}
		})
	}
}

func TestSetWalkable(t *testing.T) {
	g, _ := NewGrid(3, 3)
	if !g.SetWalkable(1, 1, false) {
		t.Fatal("SetWalkable in bounds should succeed")
	}
	if g.IsWalkable(1, 1) {
		t.Fatal("(1,1) should be a wall")
	}
	if g.SetWalkable(5, 5, false) {
		t.Fatal("SetWalkable out of bounds should fail")
	}
}

func TestNilGrid(t *testing.T) {
	var g *Grid
	if g.IsInBounds(0, 0) || g.IsWalkable(0, 0) {
		t.Fatal("nil grid should have no tiles")
	}
	if g.Width() != 0 || g.Height() != 0 || g.Layout() != nil {
		t.Fatal("nil grid accessors should return zero values")
	}
}

func TestParseLayout(t *testing.T) {
	g, err := ParseLayout([]string{
		"#####",
		"#.@.#",
		"#...#",
		"#####",
	})
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	if g.Width() != 5 || g.Height() != 4 {
		t.Fatalf("size = %dx%d, want 5x4", g.Width(), g.Height())
	}
	if g.Spawn() != (Cell{X: 2, Y: 1}) {
		t.Fatalf("spawn = %v, want (2,1)", g.Spawn())
	}
	if g.IsWalkable(0, 0) {
		t.Fatal("(0,0) should be a wall")
	}
	if !g.IsWalkable(2, 1) || !g.IsWalkable(1, 2) {
		t.Fatal("floor and spawn tiles should be walkable")
	}
	if g.WalkableCount() != 6 {
		t.Fatalf("WalkableCount = %d, want 6", g.WalkableCount())
	}
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    []string
		wantErr string
	}{
		{"ragged", []string{"...", ".."}, "width"},
		{"unknown tile", []string{"..x"}, "unknown tile"},
		{"two spawns", []string{"@.@"}, "more than one spawn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout(tt.rows)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ParseLayout error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := ParseLayout([]string{"", "  "}); !errors.Is(err, ErrEmptyLayout) {
		t.Fatalf("blank layout error = %v, want ErrEmptyLayout", err)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	rows := []string{
		"..#",
		".@#",
		"...",
	}
	g, err := ParseLayout(rows)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	got := g.Layout()
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("row %d = %q, want %q", i, got[i], rows[i])
		}
	}
}

func TestGenerateKeepsSpawnWalkable(t *testing.T) {
	spawn := Cell{X: 5, Y: 5}
	for seed := int64(0); seed < 20; seed++ {
		g, err := Generate(10, 10, 0.9, seed, spawn)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !g.IsWalkable(spawn.X, spawn.Y) {
			t.Fatalf("seed %d: spawn not walkable", seed)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate(12, 8, 0.2, 42, Cell{X: 1, Y: 1})
	b, _ := Generate(12, 8, 0.2, 42, Cell{X: 1, Y: 1})
	la, lb := a.Layout(), b.Layout()
	for i := range la {
		if la[i] != lb[i] {
			t.Fatalf("row %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	if _, err := Generate(5, 5, 1.0, 1, Cell{}); err == nil {
		t.Fatal("expected error for wall chance 1.0")
	}
	if _, err := Generate(5, 5, 0.2, 1, Cell{X: 9, Y: 9}); err == nil {
		t.Fatal("expected error for spawn outside grid")
	}
}
