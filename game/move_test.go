package game

import "testing"

func TestApplyAndParseRoundTrip(t *testing.T) {
	origin := Point{X: 5, Y: 5}
	want := map[Move]Point{
		MoveUp:    {X: 5, Y: 6},
		MoveDown:  {X: 5, Y: 4},
		MoveLeft:  {X: 4, Y: 5},
		MoveRight: {X: 6, Y: 5},
	}

	for _, m := range Moves {
		if got := m.Apply(origin); got != want[m] {
			t.Errorf("%s.Apply(%v) = %v, want %v", m, origin, got, want[m])
		}
		parsed, err := ParseMove(m.String())
		if err != nil {
			t.Errorf("ParseMove(%q): %v", m.String(), err)
		}
		if parsed != m {
			t.Errorf("ParseMove(%q) = %v, want %v", m.String(), parsed, m)
		}
	}

	if _, err := ParseMove("sideways"); err == nil {
		t.Error("ParseMove accepted an unknown token")
	}
}

func TestHeading(t *testing.T) {
	cases := []struct {
		name string
		body []Point
		want Move
		ok   bool
	}{
		{"moving right", []Point{{X: 5, Y: 5}, {X: 4, Y: 5}}, MoveRight, true},
		{"moving left", []Point{{X: 4, Y: 5}, {X: 5, Y: 5}}, MoveLeft, true},
		{"moving up", []Point{{X: 5, Y: 6}, {X: 5, Y: 5}}, MoveUp, true},
		{"moving down", []Point{{X: 5, Y: 4}, {X: 5, Y: 5}}, MoveDown, true},
		{"stacked spawn", []Point{{X: 5, Y: 5}, {X: 5, Y: 5}}, MoveUp, false},
		{"single segment", []Point{{X: 5, Y: 5}}, MoveUp, false},
	}

	for _, tc := range cases {
		s := &Snake{Id: "s", Body: tc.body}
		got, ok := s.Heading()
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("%s: Heading = %v/%v, want %v/%v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}
