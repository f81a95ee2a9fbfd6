package geometry

import (
	gomath "math"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

// Box returns the 12 outward-wound triangles of an axis-aligned box.
func Box(lo, hi math.Vec3) Soup {
	v := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
	}
	soup := make(Soup, 0, 12)
	for _, f := range faces {
		soup = append(soup, Quad(v[f[0]], v[f[1]], v[f[2]], v[f[3]])...)
	}
	return soup
}

// Quad splits the planar quad abcd into two triangles sharing the a-c edge.
func Quad(a, b, c, d math.Vec3) Soup {
	return Soup{{A: a, B: b, C: c}, {A: a, B: c, C: d}}
}

// UVSphere tessellates a sphere with the given number of latitude rings;
// longitude uses twice as many sectors. segments below 3 is raised to 3.
func UVSphere(center math.Vec3, radius float32, segments int) Soup {
	segments = max(segments, 3)
	rings, sectors := segments, segments*2

	point := func(ring, sector int) math.Vec3 {
		theta := gomath.Pi * float64(ring) / float64(rings)
		phi := 2 * gomath.Pi * float64(sector) / float64(sectors)
		return center.Add(math.Vec3{
			X: float32(gomath.Sin(theta) * gomath.Cos(phi)),
			Y: float32(gomath.Cos(theta)),
			Z: float32(gomath.Sin(theta) * gomath.Sin(phi)),
		}.Scale(radius))
	}

	var soup Soup
	for r := 0; r < rings; r++ {
		for s := 0; s < sectors; s++ {
			a, b := point(r, s), point(r+1, s)
			c, d := point(r+1, s+1), point(r, s+1)
			if r != 0 {
				soup = append(soup, Triangle{A: a, B: d, C: c})
			}
			if r != rings-1 {
				soup = append(soup, Triangle{A: a, B: c, C: b})
			}
		}
	}
	return soup
}

// Heightfield returns a terrain surface over a grid of vertex heights.
// heights[i][j] is the height at x = origin.X + j*cell, z = origin.Z + i*cell;
// ragged rows are cut to the shortest. Triangles face +Y.
func Heightfield(origin math.Vec3, cell float32, heights [][]float32) Soup {
	if len(heights) < 2 {
		return nil
	}
	cols := len(heights[0])
	for _, row := range heights {
		cols = min(cols, len(row))
	}
	point := func(i, j int) math.Vec3 {
		return origin.Add(math.Vec3{X: float32(j) * cell, Y: heights[i][j], Z: float32(i) * cell})
	}

	var soup Soup
	for i := 0; i+1 < len(heights); i++ {
		for j := 0; j+1 < cols; j++ {
			p00, p10 := point(i, j), point(i, j+1)
			p01, p11 := point(i+1, j), point(i+1, j+1)
			soup = append(soup,
				Triangle{A: p00, B: p01, C: p11},
				Triangle{A: p00, B: p11, C: p10},
			)
		}
	}
	return soup
}

// WallRune marks a wall cell in a Layout.
const WallRune = '#'

// Layout describes a maze drawn as ASCII rows on the XZ plane. Row i spans
// z in [Origin.Z + i*Cell, Origin.Z + (i+1)*Cell] and column j spans x the
// same way; the floor top sits at Origin.Y.
type Layout struct {
	Rows           []string
	Cell           float32
	WallHeight     float32
	FloorThickness float32
	Origin         math.Vec3
}

// Size returns the number of columns and rows.
func (l Layout) Size() (cols, rows int) {
	for _, row := range l.Rows {
		cols = max(cols, len([]rune(row)))
	}
	return cols, len(l.Rows)
}

// Walls returns boxes for every run of consecutive wall cells in a row.
func (l Layout) Walls() Soup {
	var soup Soup
	for i, row := range l.Rows {
		cells := []rune(row)
		for j := 0; j < len(cells); {
			if cells[j] != WallRune {
				j++
				continue
			}
			start := j
			for j < len(cells) && cells[j] == WallRune {
				j++
			}
			lo := l.Origin.Add(math.Vec3{X: float32(start) * l.Cell, Z: float32(i) * l.Cell})
			hi := l.Origin.Add(math.Vec3{X: float32(j) * l.Cell, Y: l.WallHeight, Z: float32(i+1) * l.Cell})
			soup = append(soup, Box(lo, hi)...)
		}
	}
	return soup
}

// Floor returns a slab under the whole grid.
func (l Layout) Floor() Soup {
	cols, rows := l.Size()
	if cols == 0 || rows == 0 {
		return nil
	}
	thickness := l.FloorThickness
	if thickness <= 0 {
		thickness = l.Cell / 4
	}
	lo := l.Origin.Sub(math.Vec3{Y: thickness})
	hi := l.Origin.Add(math.Vec3{X: float32(cols) * l.Cell, Z: float32(rows) * l.Cell})
	return Box(lo, hi)
}

// Find returns the floor-level centre of the first cell holding marker.
func (l Layout) Find(marker rune) (math.Vec3, bool) {
	col, row, ok := l.FindCell(marker)
	if !ok {
		return math.Vec3{}, false
	}
	return l.CellCenter(col, row), true
}

// FindCell returns the column and row of the first cell holding marker.
func (l Layout) FindCell(marker rune) (col, row int, ok bool) {
	for i, r := range l.Rows {
		for j, c := range []rune(r) {
			if c == marker {
				return j, i, true
			}
		}
	}
	return 0, 0, false
}

// CellCenter returns the floor-level centre of a cell.
func (l Layout) CellCenter(col, row int) math.Vec3 {
	return l.Origin.Add(math.Vec3{
		X: (float32(col) + 0.5) * l.Cell,
		Z: (float32(row) + 0.5) * l.Cell,
	})
}

// CellAt returns the cell under the object-space point p.
func (l Layout) CellAt(p math.Vec3) (col, row int, ok bool) {
	if l.Cell <= 0 {
		return 0, 0, false
	}
	d := p.Sub(l.Origin)
	if d.X < 0 || d.Z < 0 {
		return 0, 0, false
	}
	col, row = int(d.X/l.Cell), int(d.Z/l.Cell)
	cols, rows := l.Size()
	return col, row, col < cols && row < rows
}

// At returns the rune drawn at a cell. Cells past the end of a short row
// read as open floor; cells outside the grid read as walls.
func (l Layout) At(col, row int) rune {
	if row < 0 || row >= len(l.Rows) || col < 0 {
		return WallRune
	}
	cols, _ := l.Size()
	if col >= cols {
		return WallRune
	}
	cells := []rune(l.Rows[row])
	if col >= len(cells) {
		return ' '
	}
	return cells[col]
}

// IsOpen reports whether a ball can occupy the cell.
func (l Layout) IsOpen(col, row int) bool {
	return l.At(col, row) != WallRune
}
