// Package life implements Conway's Game of Life on a toroidal grid together
// with the plain-text format used to save and restore a board.
package life

import (
	"errors"
	"fmt"
	"slices"

	"lifegrid/pkg/core"
)

const (
	dead  uint8 = 0
	alive uint8 = 1
)

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("life: coordinate out of bounds")
	// ErrInvalidSize is returned when a grid is requested with a
	// non-positive width or height.
	ErrInvalidSize = errors.New("life: invalid grid size")
)

// Grid is a Game of Life board whose edges wrap around to the opposite side.
//
// Two equally sized buffers back the board. cur holds the visible state and
// nxt is scratch space written during Step; the two are swapped once every
// cell has been computed, so no cell ever observes a neighbor's updated value
// within the same generation.
//
// A Grid is not safe for concurrent use.
type Grid struct {
	w, h       int
	cur        *core.ByteGrid
	nxt        *core.ByteGrid
	generation uint64
}

// New returns an all-dead grid of w columns and h rows. Both dimensions must
// be at least 1. Grids narrower or shorter than 3 cells are allowed; their
// wrapped neighbors resolve to the same cell more than once and are counted
// each time.
func New(w, h int) (*Grid, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return &Grid{
		w:   w,
		h:   h,
		cur: core.NewByteGrid(w, h),
		nxt: core.NewByteGrid(w, h),
	}, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: g.w, H: g.h} }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Generation returns the number of steps taken since the grid was created,
// loaded, cleared or randomized.
func (g *Grid) Generation() uint64 { return g.generation }

// Cells exposes the active buffer in row-major order without copying.
// The slice must be treated as read-only and is invalidated by the next Step.
func (g *Grid) Cells() []uint8 { return g.cur.Cells() }

// State returns a copy of the current cells as h rows of w values, 1 for
// alive and 0 for dead.
func (g *Grid) State() [][]uint8 {
	out := make([][]uint8, g.h)
	for y := range out {
		out[y] = append([]uint8(nil), g.cur.Row(y)...)
	}
	return out
}

// Alive reports whether the cell at column x, row y is alive.
func (g *Grid) Alive(x, y int) (bool, error) {
	if err := g.check(x, y); err != nil {
		return false, err
	}
	return g.cur.At(x, y) == alive, nil
}

// Toggle flips the cell at column x, row y.
func (g *Grid) Toggle(x, y int) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	g.cur.Cells()[g.cur.Index(x, y)] ^= 1
	return nil
}

// Set forces the cell at column x, row y to the given state.
func (g *Grid) Set(x, y int, on bool) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	v := dead
	if on {
		v = alive
	}
	g.cur.Cells()[g.cur.Index(x, y)] = v
	return nil
}

func (g *Grid) check(x, y int) error {
	if !g.Size().Contains(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, g.w, g.h)
	}
	return nil
}

// LiveNeighbors counts the live cells among the eight cells surrounding
// (x, y), wrapping across the edges. Coordinates outside the grid are wrapped
// onto it first.
func (g *Grid) LiveNeighbors(x, y int) int {
	x, y = g.cur.Wrap(x, y)
	return liveNeighbors(g.cur, x, y)
}

func liveNeighbors(b *core.ByteGrid, x, y int) int {
	w, h := b.W, b.H
	cells := b.Cells()
	n := 0
	for dy := -1; dy <= 1; dy++ {
		ny := (y + dy + h) % h
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := (x + dx + w) % w
			n += int(cells[ny*w+nx])
		}
	}
	return n
}

// Step advances the simulation by one generation: live cells with two or
// three live neighbors survive, dead cells with exactly three come alive,
// everything else dies.
func (g *Grid) Step() {
	next := g.nxt.Cells()
	cells := g.cur.Cells()
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			idx := y*g.w + x
			n := liveNeighbors(g.cur, x, y)
			next[idx] = dead
			if n == 3 || (n == 2 && cells[idx] == alive) {
				next[idx] = alive
			}
		}
	}
	g.cur, g.nxt = g.nxt, g.cur
	g.generation++
}

// Population returns the number of live cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cur.Cells() {
		n += int(c)
	}
	return n
}

// Clear kills every cell and resets the generation counter.
func (g *Grid) Clear() {
	g.cur.Clear()
	g.nxt.Clear()
	g.generation = 0
}

// Randomize fills the board with a deterministic pattern derived from seed
// and resets the generation counter.
func (g *Grid) Randomize(seed int64) {
	rng := core.NewRNG(seed).Source()
	core.FillBinary(rng, g.cur.Cells())
	g.nxt.Clear()
	g.generation = 0
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		w:          g.w,
		h:          g.h,
		cur:        core.NewByteGrid(g.w, g.h),
		nxt:        core.NewByteGrid(g.w, g.h),
		generation: g.generation,
	}
	c.cur.CopyFrom(g.cur)
	return c
}

// Equal reports whether both grids have the same dimensions and the same
// live cells. Generation counters are ignored.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.w != o.w || g.h != o.h {
		return false
	}
	return slices.Equal(g.cur.Cells(), o.cur.Cells())
}
