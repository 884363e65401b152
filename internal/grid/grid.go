// Package grid defines the toroidal coordinate space the simulation
// moves snakes across: positions, directions, and the pure arithmetic
// that advances one from the other.
package grid

// Position is an integer cell on the grid. The zero value is the
// origin and is a valid position, so Position is always safe to use
// as a map key without a presence check.
type Position struct {
	X int
	Y int
}

// Direction is one of the four cardinal directions a snake can move in.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String renders the direction the way it appears on the wire.
func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// Opposite returns the direction that exactly reverses d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// All four directions, in wire order. Copied defensively by callers
// that need to mutate a working set.
var All = [4]Direction{Up, Down, Left, Right}

// ParseDirection converts a wire string into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "Up":
		return Up, true
	case "Down":
		return Down, true
	case "Left":
		return Left, true
	case "Right":
		return Right, true
	default:
		return 0, false
	}
}

// delta returns the (dx, dy) unit step for a direction.
func (d Direction) delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Step applies one move of dir to pos on a W×H toroidal grid, wrapping
// at the edges rather than clamping.
func Step(pos Position, dir Direction, w, h int) Position {
	dx, dy := dir.delta()
	return Position{
		X: wrap(pos.X+dx, w),
		Y: wrap(pos.Y+dy, h),
	}
}

// wrap folds v into [0, n) regardless of sign.
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
