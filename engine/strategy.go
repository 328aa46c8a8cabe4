package engine

// Mode is the turn-local posture classification. It is recomputed from the
// snapshot every turn and selects which scoring factors are active and how
// heavily each one weighs.
type Mode int

const (
	// ModeCritical: health is nearly gone, food dominates everything.
	ModeCritical Mode = iota
	// ModeClosingGap: the biggest opponent is pulling ahead, grow
	// aggressively while staying clear of larger snakes.
	ModeClosingGap
	// ModeOvergrown: comfortably longer than the field and healthy,
	// suppress growth and play for position and blocking.
	ModeOvergrown
	// ModeConservative: crowded board, minimize food contests and keep
	// distance.
	ModeConservative
	// ModeUnderdog: every opponent is longer, growth-focused with
	// health-graduated caution.
	ModeUnderdog
	// ModeCompetitive: healthy with at least one shorter opponent, hunt
	// and block with opportunistic food.
	ModeCompetitive
	// ModeSurvival: nothing special applies, balanced food-seeking.
	ModeSurvival
	// ModeDominant: no opponents left, food-seeking only.
	ModeDominant
)

func (m Mode) String() string {
	switch m {
	case ModeCritical:
		return "critical"
	case ModeClosingGap:
		return "closing-gap"
	case ModeOvergrown:
		return "overgrown"
	case ModeConservative:
		return "conservative"
	case ModeUnderdog:
		return "underdog"
	case ModeCompetitive:
		return "competitive"
	case ModeSurvival:
		return "survival"
	case ModeDominant:
		return "dominant"
	}
	return "survival"
}

// SelectMode classifies (health, self length, opponent lengths) into a
// Mode. Rules are evaluated in order; the first match wins.
func SelectMode(health int32, selfLen int, oppLens []int) Mode {
	if len(oppLens) == 0 {
		return ModeDominant
	}

	maxOpp, minOpp := oppLens[0], oppLens[0]
	allLonger, anyShorter := true, false
	for _, l := range oppLens {
		if l > maxOpp {
			maxOpp = l
		}
		if l < minOpp {
			minOpp = l
		}
		if l <= selfLen {
			allLonger = false
		}
		if l < selfLen {
			anyShorter = true
		}
	}

	switch {
	case health < 15:
		return ModeCritical
	case maxOpp-selfLen >= 2:
		return ModeClosingGap
	case selfLen-minOpp >= 2 && health > 50:
		return ModeOvergrown
	case health > 20 && len(oppLens) >= 2:
		return ModeConservative
	case allLonger:
		return ModeUnderdog
	case health >= 20 && anyShorter:
		return ModeCompetitive
	}
	return ModeSurvival
}
