package mapgen

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/quadstar/components"
)

func TestRandomDeterministic(t *testing.T) {
	p := Params{Size: 32, WallFrequency: 0.3, Seed: 7}
	a, err := Random(p)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Random(p)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different maps")
	}

	p.Seed = 8
	c, _ := Random(p)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical maps")
	}
}

func TestRandomFrequency(t *testing.T) {
	tests := []struct {
		freq     float64
		min, max float64
	}{
		{0, 0, 0},
		{0.3, 0.25, 0.35},
		{1, 1, 1},
	}
	for _, tt := range tests {
		rows, err := Random(Params{Size: 64, WallFrequency: tt.freq, Seed: 1})
		if err != nil {
			t.Fatal(err)
		}
		if got := WallFraction(rows); got < tt.min || got > tt.max {
			t.Errorf("frequency %v: wall fraction %v outside [%v,%v]", tt.freq, got, tt.min, tt.max)
		}
	}
}

func TestKeepCells(t *testing.T) {
	keep := []components.Point{{X: 0, Y: 0}, {X: 15, Y: 15}, {X: 99, Y: 0}}
	for _, kind := range []string{KindRandom, KindCave} {
		rows, err := Generate(Params{Kind: kind, Size: 16, WallFrequency: 1, Seed: 3, Keep: keep})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if rows[0][0] != 0 || rows[15][15] != 0 {
			t.Errorf("%s: kept cells are walls", kind)
		}
	}
}

func TestCave(t *testing.T) {
	p := Params{Size: 64, WallFrequency: 0.4, Seed: 11}
	a, err := Cave(p)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Cave(p)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different caves")
	}
	if f := WallFraction(a); f == 0 || f == 1 {
		t.Errorf("wall fraction %v, expected a mix", f)
	}

	open, _ := Cave(Params{Size: 16, WallFrequency: 0, Seed: 11})
	if f := WallFraction(open); f != 0 {
		t.Errorf("zero frequency: wall fraction %v", f)
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(Params{Kind: KindRandom, Size: 12}); !errors.Is(err, ErrSize) {
		t.Errorf("expected ErrSize, got %v", err)
	}
	if _, err := Clear(0); !errors.Is(err, ErrSize) {
		t.Errorf("expected ErrSize, got %v", err)
	}
	if _, err := Generate(Params{Kind: KindRandom, Size: 8, WallFrequency: 1.5}); err == nil {
		t.Error("expected error for frequency above 1")
	}
	if _, err := Generate(Params{Kind: "maze", Size: 8}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParse(t *testing.T) {
	in := "; comment\n#..1\n.0#.\n\n....\n##..\n"
	rows, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]uint8{
		{1, 0, 0, 1},
		{0, 0, 1, 0},
		{0, 0, 0, 0},
		{1, 1, 0, 0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("got %v, want %v", rows, want)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("...\n..\n")); !errors.Is(err, ErrRagged) {
		t.Errorf("expected ErrRagged, got %v", err)
	}
	if _, err := Parse(strings.NewReader("..x.\n")); err == nil {
		t.Error("expected error for unknown glyph")
	}
}

func TestFormatPath(t *testing.T) {
	rows := [][]uint8{
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	path := []components.Region{
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 1, Y: 0, Width: 1, Height: 1},
		{X: 2, Y: 0, Width: 2, Height: 2},
		{X: 3, Y: 2, Width: 1, Height: 1},
	}
	want := "S*oo\n.#oo\n...G\n....\n"
	if got := Format(rows, path); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	// Drawn maps read back as the same occupancy.
	back, err := Parse(strings.NewReader(Format(rows, path)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, rows) {
		t.Errorf("round trip: got %v, want %v", back, rows)
	}
}
