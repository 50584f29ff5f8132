// Package chart computes and draws the block mastery charts: the level
// histogram and the fractional block level gauge.
package chart

import (
	"math"

	"github.com/abhisek/geogem/internal/mastery"
)

// Series is a bar chart dataset.
type Series struct {
	X []int
	Y []int
}

// Max returns the largest y value, or 0 for an empty series.
func (s Series) Max() int {
	m := 0
	for _, y := range s.Y {
		m = max(m, y)
	}
	return m
}

// MasteryHistogram counts words per mastery level. X runs over 0..maxLevel
// and levels with no words are reported as zero. Levels outside the range
// are ignored.
func MasteryHistogram(levels []int, maxLevel int) Series {
	if maxLevel < 0 {
		return Series{}
	}
	s := Series{X: make([]int, maxLevel+1), Y: make([]int, maxLevel+1)}
	for i := range s.X {
		s.X[i] = i
	}
	for _, l := range levels {
		if l >= 0 && l <= maxLevel {
			s.Y[l]++
		}
	}
	return s
}

// BlockMasteryLevel is the weighted block level; see mastery.BlockLevel.
func BlockMasteryLevel(levels []int, numBlockWords int) float64 {
	return mastery.BlockLevel(levels, numBlockWords)
}

// Split separates a block level into the reached level and the progress
// towards the next one.
func Split(level float64) (whole int, fractional float64) {
	if level <= 0 || math.IsNaN(level) {
		return 0, 0
	}
	w := math.Floor(level)
	return int(w), level - w
}
