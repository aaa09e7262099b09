package utils

import "math"

// CalculateDevotionScore weighs a couple's consistency for the profile
// view. The current streak dominates, total paired days and voice
// attendance round it out.
func CalculateDevotionScore(currentStreak, totalDays, attendanceDays int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	daysScore := float64(totalDays) * 0.5
	attendanceScore := float64(attendanceDays) * 1.0

	return streakScore + daysScore + attendanceScore
}
