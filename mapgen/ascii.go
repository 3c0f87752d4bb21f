package mapgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pthm-cable/quadstar/components"
)

// ErrRagged is returned when map rows differ in length.
var ErrRagged = errors.New("map rows differ in length")

// Cell glyphs of the ASCII map format.
const (
	GlyphWall   = '#'
	GlyphFree   = '.'
	GlyphStart  = 'S'
	GlyphGoal   = 'G'
	GlyphStep   = '*'
	GlyphMerged = 'o'
)

// Parse reads one row per line: '#' or '1' is a wall, '.' or '0' is free.
// Blank lines and lines starting with ';' are skipped. Path glyphs written by
// Format read back as free cells.
func Parse(r io.Reader) ([][]uint8, error) {
	var rows [][]uint8
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), " \t\r")
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		row := make([]uint8, 0, len(text))
		for col, c := range text {
			switch c {
			case GlyphWall, '1':
				row = append(row, 1)
			case GlyphFree, '0', GlyphStart, GlyphGoal, GlyphStep, GlyphMerged:
				row = append(row, 0)
			default:
				return nil, fmt.Errorf("line %d col %d: unexpected %q", line, col+1, c)
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %d cells, want %d: %w", line, len(row), len(rows[0]), ErrRagged)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}
	return rows, nil
}

// ParseFile reads a map from path.
func ParseFile(path string) ([][]uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Format renders rows with an optional path drawn over it. Unit steps are
// drawn as '*', merged regions as 'o', and the first and last steps as 'S'
// and 'G'.
func Format(rows [][]uint8, path []components.Region) string {
	grid := make([][]byte, len(rows))
	for y, row := range rows {
		grid[y] = make([]byte, len(row))
		for x, v := range row {
			if v != 0 {
				grid[y][x] = GlyphWall
			} else {
				grid[y][x] = GlyphFree
			}
		}
	}

	set := func(x, y int, c byte) {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
			grid[y][x] = c
		}
	}
	for _, r := range path {
		glyph := byte(GlyphStep)
		if !r.IsUnit() {
			glyph = GlyphMerged
		}
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				set(x, y, glyph)
			}
		}
	}
	if len(path) > 0 {
		first, last := path[0], path[len(path)-1]
		set(first.X, first.Y, GlyphStart)
		set(last.X, last.Y, GlyphGoal)
	}

	var b strings.Builder
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
