package mastery

// BlockLevel is the weighted mastery of a block: the sum of the learner's
// word levels divided by the number of words in the block. Words the learner
// has not met count as level 0.
func BlockLevel(levels []int, numBlockWords int) float64 {
	if numBlockWords <= 0 || len(levels) == 0 {
		return 0
	}
	sum := 0
	for _, l := range levels {
		sum += l
	}
	return float64(sum) / float64(numBlockWords)
}

// BlockLevelPercent expresses a block level against the number of levels on
// the ladder.
func BlockLevelPercent(level float64) float64 {
	return level / float64(len(LevelThresholds)) * 100
}

// FullyLearned reports whether every word in the block is a learner word.
func FullyLearned(learnerWords, numBlockWords int) bool {
	return numBlockWords > 0 && learnerWords == numBlockWords
}
