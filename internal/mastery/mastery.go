// Package mastery holds the scoring rules for learner words: points earned
// per answer, the word mastery ladder, and profile experience levels.
package mastery

import "math"

// Points bounds for a single learner word.
const (
	MinPoints = 0
	MaxPoints = 100
)

// LevelThresholds are the points needed to reach each word mastery level.
// Index is the level.
var LevelThresholds = []int{0, 1, 5, 15, 35, 70, 100}

// MaxLevel is the highest word mastery level.
func MaxLevel() int {
	return len(LevelThresholds) - 1
}

// Rule is the points and experience change applied for one answer.
type Rule struct {
	Gain       int // points added on a correct answer
	Loss       int // points removed on a wrong answer
	Experience int // profile experience added on a correct answer
}

// Rules per scored quiz mode, keyed by wire tag.
var Rules = map[string]Rule{
	"multiple_choice": {Gain: 2, Loss: 1, Experience: 2},
	"review":          {Gain: 1, Loss: 1, Experience: 1},
}

// Apply returns the new points value after an answer, clamped to
// [MinPoints, MaxPoints].
func (r Rule) Apply(points int, correct bool) int {
	if correct {
		points += r.Gain
	} else {
		points -= r.Loss
	}
	return clamp(points, MinPoints, MaxPoints)
}

// LevelFor returns the highest level whose threshold points reaches.
func LevelFor(points int) int {
	level := 0
	for l, threshold := range LevelThresholds {
		if points >= threshold {
			level = l
		}
	}
	return level
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Profile experience ladder.
const MaxProfileLevel = 100

var levelXP = buildLevelXP()

// levelIncrement is the experience needed to go from level-1 to level.
func levelIncrement(level int) int {
	v := int(math.Ceil(24.3*math.Log(float64(level)) - 9.8))
	if v < 1 {
		return 1
	}
	return v
}

func buildLevelXP() []int {
	xp := make([]int, MaxProfileLevel+1)
	for l := 1; l <= MaxProfileLevel; l++ {
		xp[l] = xp[l-1] + levelIncrement(l)
	}
	return xp
}

// ProfileLevel converts accumulated experience into a profile level.
func ProfileLevel(experience int) int {
	for l, xp := range levelXP {
		if experience < xp {
			return l - 1
		}
	}
	return MaxProfileLevel
}

// LevelXP returns the total experience needed to reach level.
func LevelXP(level int) int {
	return levelXP[clamp(level, 0, MaxProfileLevel)]
}

// LevelProgress is the fraction of the current level already earned.
func LevelProgress(experience int) float64 {
	level := ProfileLevel(experience)
	if level >= MaxProfileLevel {
		return 1
	}
	return float64(experience-levelXP[level]) / float64(levelIncrement(level+1))
}

// XPToNextLevel returns the experience still missing for the next level.
func XPToNextLevel(experience int) int {
	level := ProfileLevel(experience)
	if level >= MaxProfileLevel {
		return 0
	}
	return levelXP[level+1] - experience
}
