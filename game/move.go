package game

import "fmt"

// Move is one of the four cardinal moves.
type Move int32

const (
	MoveUp Move = iota
	MoveDown
	MoveLeft
	MoveRight
)

// Moves lists all moves in the fixed evaluation order. Anything that ranks
// candidates iterates in this order so ties resolve the same way every turn.
var Moves = [4]Move{MoveUp, MoveDown, MoveLeft, MoveRight}

// Apply returns the cell one step from p in the move's direction.
func (m Move) Apply(p Point) Point {
	switch m {
	case MoveUp:
		return Point{X: p.X, Y: p.Y + 1}
	case MoveDown:
		return Point{X: p.X, Y: p.Y - 1}
	case MoveLeft:
		return Point{X: p.X - 1, Y: p.Y}
	case MoveRight:
		return Point{X: p.X + 1, Y: p.Y}
	}
	return p
}

func (m Move) String() string {
	switch m {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	}
	return "up"
}

// ParseMove converts a wire move token back into a Move.
func ParseMove(s string) (Move, error) {
	switch s {
	case "up":
		return MoveUp, nil
	case "down":
		return MoveDown, nil
	case "left":
		return MoveLeft, nil
	case "right":
		return MoveRight, nil
	}
	return MoveUp, fmt.Errorf("unknown move %q", s)
}

// Heading returns the snake's current direction of travel, derived from the
// head and neck. ok is false for single-segment or stacked bodies where no
// direction can be inferred.
func (s *Snake) Heading() (Move, bool) {
	if len(s.Body) < 2 {
		return MoveUp, false
	}
	head, neck := s.Body[0], s.Body[1]
	switch {
	case head.X > neck.X:
		return MoveRight, true
	case head.X < neck.X:
		return MoveLeft, true
	case head.Y > neck.Y:
		return MoveUp, true
	case head.Y < neck.Y:
		return MoveDown, true
	}
	return MoveUp, false
}
