// Package game defines the board snapshot types shared by the decision
// engine, the rules simulator and the transport layer.
//
// A GameState is built fresh from each incoming request and discarded once
// a move has been returned; nothing in this package carries state between
// turns. Coordinates follow Battlesnake conventions: (0,0) is bottom-left.
package game

// Point is a board coordinate.
type Point struct {
	X int32
	Y int32
}

// Dist returns the Manhattan distance between two points.
func (p Point) Dist(o Point) int32 {
	return abs32(p.X-o.X) + abs32(p.Y-o.Y)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Snake is an ordered body, head first. Identity is the Id field; two
// distinct snakes can coincide structurally (stacked spawns), so body
// comparison must never be used to tell snakes apart.
type Snake struct {
	Id     string
	Health int32
	Body   []Point
}

// Head returns the first body segment.
func (s *Snake) Head() Point {
	return s.Body[0]
}

// Tail returns the last body segment.
func (s *Snake) Tail() Point {
	return s.Body[len(s.Body)-1]
}

// Length is the number of body segments.
func (s *Snake) Length() int {
	return len(s.Body)
}

// GameState is the complete per-turn snapshot.
// YouId selects the ego snake perspective.
type GameState struct {
	Width  int32
	Height int32
	Snakes []Snake
	Food   []Point
	YouId  string
	Turn   int32
}

// InBounds reports whether p lies on the board.
func (s *GameState) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// You returns the ego snake, or nil if it is not in the snapshot.
func (s *GameState) You() *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == s.YouId {
			return &s.Snakes[i]
		}
	}
	return nil
}

// Opponents returns all live snakes other than the ego snake, keyed by id.
func (s *GameState) Opponents() []*Snake {
	out := make([]*Snake, 0, len(s.Snakes))
	for i := range s.Snakes {
		if s.Snakes[i].Id == s.YouId || s.Snakes[i].Health <= 0 {
			continue
		}
		out = append(out, &s.Snakes[i])
	}
	return out
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		Width:  s.Width,
		Height: s.Height,
		YouId:  s.YouId,
		Turn:   s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			out.Snakes[i] = Snake{Id: s.Snakes[i].Id, Health: s.Snakes[i].Health}
			if len(s.Snakes[i].Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(s.Snakes[i].Body))
				copy(out.Snakes[i].Body, s.Snakes[i].Body)
			}
		}
	}

	return out
}
