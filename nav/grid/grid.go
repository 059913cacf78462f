// Package grid implements the occupancy grid: a dense 2D probabilistic map
// updated by ray casting, and the inflation query the planner uses to keep
// clear of obstacles.
package grid

import (
	"github.com/chewxy/math32"

	"github.com/itohio/navstack/nav/geom"
)

// Cell is a single occupancy grid cell. Probability == 0.5 means unknown;
// Occupied implies Probability >= 0.5; a cell is traversable iff it is
// neither occupied nor more likely occupied than not.
type Cell struct {
	Occupied    bool
	Probability float32
	Cost        float32
	LastUpdated int64 // monotonic ticks, set by the grid's owner
}

// IsTraversable reports whether a cell can be driven over on its own,
// ignoring neighboring cells (see InflatedTraversable for the margin
// query the planner actually uses).
func (c Cell) IsTraversable() bool {
	return !c.Occupied && c.Probability <= 0.5
}

// Grid is a 2D probabilistic occupancy map over a bounded rectangle of the
// world; OriginX/OriginY is the rectangle's minimum corner. It owns its cells exclusively: the
// NavigationController is the only writer, the planner only ever borrows
// read access for the duration of a single Plan call.
type Grid struct {
	Cells      [][]Cell // [row][col], row-major, height rows x width cols
	Resolution float32  // meters per cell
	Width      int      // columns
	Height     int      // rows
	OriginX    float32
	OriginY    float32

	tick int64
}

// New allocates an empty grid of widthM x heightM meters at the given
// resolution (meters/cell), centered at the origin. Every cell starts
// unknown: Probability 0.5, Occupied false, Cost 0.
func New(widthM, heightM, resolution float32) *Grid {
	cols := int(widthM / resolution)
	rows := int(heightM / resolution)
	cells := make([][]Cell, rows)
	for r := range cells {
		row := make([]Cell, cols)
		for c := range row {
			row[c] = Cell{Probability: 0.5}
		}
		cells[r] = row
	}
	return &Grid{
		Cells:      cells,
		Resolution: resolution,
		Width:      cols,
		Height:     rows,
		OriginX:    -widthM / 2,
		OriginY:    -heightM / 2,
	}
}

// Default returns the spec's default grid: 30m x 30m at 0.05 m/cell.
func Default() *Grid {
	return New(30, 30, 0.05)
}

// WorldToGrid converts a world-frame planar coordinate to a (row, col)
// cell index. The result may be out of bounds; callers check via InBounds
// or the Cell-returning accessors.
func (g *Grid) WorldToGrid(x, y float32) (row, col int) {
	col = int(math32.Floor((x - g.OriginX) / g.Resolution))
	row = int(math32.Floor((y - g.OriginY) / g.Resolution))
	return row, col
}

// GridToWorld returns the world-frame coordinate of a cell's center. Half a
// cell away from every edge, it stays clear of float32 rounding at the
// floor boundary, making the pair round-trip:
// WorldToGrid(GridToWorld(r, c)) == (r, c) for any in-bounds (r, c).
func (g *Grid) GridToWorld(row, col int) (x, y float32) {
	x = g.OriginX + (float32(col)+0.5)*g.Resolution
	y = g.OriginY + (float32(row)+0.5)*g.Resolution
	return x, y
}

// InBounds reports whether (row, col) addresses an existing cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

// At returns the cell at (row, col) and whether it was in bounds. An
// out-of-bounds read returns the zero Cell and false; treat that as
// non-traversable per spec.md's NumericalDegeneracy policy.
func (g *Grid) At(row, col int) (Cell, bool) {
	if !g.InBounds(row, col) {
		return Cell{}, false
	}
	return g.Cells[row][col], true
}

// IsTraversable reports whether the cell at (row, col) is traversable.
// Out-of-bounds cells are never traversable.
func (g *Grid) IsTraversable(row, col int) bool {
	c, ok := g.At(row, col)
	return ok && c.IsTraversable()
}

// InflatedTraversable reports whether every cell in the (2*margin+1)
// square centered on (row, col) is traversable. This is the only obstacle
// query the planner uses; it gives a safety buffer around real obstacles
// without the planner needing its own notion of robot footprint.
func (g *Grid) InflatedTraversable(row, col, margin int) bool {
	for dr := -margin; dr <= margin; dr++ {
		for dc := -margin; dc <= margin; dc++ {
			if !g.IsTraversable(row+dr, col+dc) {
				return false
			}
		}
	}
	return true
}

// Integrate applies a batch of sensor readings against the robot's current
// pose, tracing a Bresenham line from the robot's cell to each occupied
// hit and marking it as described in spec.md §4.1. It reports whether any
// touched cell's probability changed by more than 0.3 (a "significant
// change", used by the controller to decide whether to re-validate the
// current path).
func (g *Grid) Integrate(readings []Reading, robotPose geom.Pose) (significantChange bool) {
	g.tick++
	robotRow, robotCol := g.WorldToGrid(robotPose.X, robotPose.Y)

	for _, r := range readings {
		if !r.Occupied {
			continue
		}
		hitRow, hitCol := g.WorldToGrid(r.X, r.Y)
		if !g.InBounds(hitRow, hitCol) {
			continue
		}

		cells := bresenhamLine(robotRow, robotCol, hitRow, hitCol)
		for i, rc := range cells {
			if !g.InBounds(rc.row, rc.col) {
				continue
			}
			cell := &g.Cells[rc.row][rc.col]
			old := cell.Probability

			last := i == len(cells)-1
			if last {
				cell.Probability = 0.95
				cell.Occupied = true
			} else {
				cell.Probability = 0.10
				cell.Occupied = false
			}
			cell.LastUpdated = g.tick

			if math32.Abs(old-cell.Probability) > 0.3 {
				significantChange = true
			}
		}
	}
	return significantChange
}

// Reading is the planar projection of a sensor reading that Integrate
// needs: a hit point in world coordinates, and whether it represents an
// obstacle. Constructed from sense.Reading by the controller at the
// sensor boundary.
type Reading struct {
	X, Y     float32
	Occupied bool
}

type rowCol struct{ row, col int }

// bresenhamLine enumerates every grid cell on the line from (r0, c0) to
// (r1, c1), inclusive of both endpoints, using the classic integer-only
// Bresenham algorithm. Deterministic for a given pair of endpoints, which
// is all correctness requires here (the tie-breaking rule itself is not
// load-bearing).
func bresenhamLine(r0, c0, r1, c1 int) []rowCol {
	dRow := abs(r1 - r0)
	dCol := abs(c1 - c0)
	sRow := sign(r1 - r0)
	sCol := sign(c1 - c0)
	err := dCol - dRow

	var cells []rowCol
	row, col := r0, c0
	for {
		cells = append(cells, rowCol{row, col})
		if row == r1 && col == c1 {
			break
		}
		e2 := 2 * err
		if e2 > -dRow {
			err -= dRow
			col += sCol
		}
		if e2 < dCol {
			err += dCol
			row += sRow
		}
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
