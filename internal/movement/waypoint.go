package movement

import (
	"math"

	"github.com/Versifine/tilewalk/internal/world"
)

// Point is a sub-tile position in tile units.
type Point struct {
	X float64
	Y float64
}

func pointOf(c world.Cell) Point {
	return Point{X: float64(c.X), Y: float64(c.Y)}
}

func (p Point) distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Waypoint is a corner of a path, tagged with the run mode it was planned in.
type Waypoint struct {
	Cell world.Cell
	Run  bool
}

// Segment is the interpolation currently in flight.
type Segment struct {
	From     Point
	To       Waypoint
	Progress float64
}

// Compress reduces origin+path to its turning points. The result always
// starts with origin and ends with the last path cell; a straight path of any
// length yields exactly two waypoints.
func Compress(origin world.Cell, path []world.Cell, run bool) []Waypoint {
	if len(path) == 0 {
		return []Waypoint{{Cell: origin, Run: run}}
	}

	cells := make([]world.Cell, 0, len(path)+1)
	cells = append(cells, origin)
	cells = append(cells, path...)

	out := []Waypoint{{Cell: origin, Run: run}}
	for i := 1; i < len(cells)-1; i++ {
		if direction(cells[i-1], cells[i]) != direction(cells[i], cells[i+1]) {
			out = append(out, Waypoint{Cell: cells[i], Run: run})
		}
	}
	out = append(out, Waypoint{Cell: cells[len(cells)-1], Run: run})
	return out
}

func direction(from, to world.Cell) [2]int {
	return [2]int{sign(to.X - from.X), sign(to.Y - from.Y)}
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
