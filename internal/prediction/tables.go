package prediction

// courseWinRates is the historical win percentage by starting lane
var courseWinRates = map[int]float64{
	1: 55.0,
	2: 14.0,
	3: 12.0,
	4: 11.0,
	5: 6.0,
	6: 2.0,
}

const defaultCourseWinRate = 10.0

// finishScores converts a finish digit of the recent-form string into a score
var finishScores = map[rune]float64{
	'1': 100,
	'2': 80,
	'3': 60,
	'4': 40,
	'5': 20,
	'6': 10,
}

const neutralFormScore = 50.0

// CourseWinRate returns the baseline win rate for a starting position
func CourseWinRate(position int) float64 {
	if rate, ok := courseWinRates[position]; ok {
		return rate
	}
	return defaultCourseWinRate
}

// FormScore averages the finish scores of the recognised characters in a
// recent-form string. An empty or unrecognised string scores neutral.
func FormScore(series string) float64 {
	total, count := 0.0, 0
	for _, c := range series {
		if s, ok := finishScores[c]; ok {
			total += s
			count++
		}
	}
	if count == 0 {
		return neutralFormScore
	}
	return total / float64(count)
}
