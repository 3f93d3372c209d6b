// Package irating estimates how a finishing position moves a driver's rating.
package irating

import "math"

const (
	// K scales the normalized position difference into rating points.
	K = 120

	MaxGain = 100
	MaxLoss = -100
)

// Project returns the estimated rating change for a driver rated rating who
// finishes at finishPosition (1-based) in a field of fieldSize cars whose
// strength is fieldStrength. Fields of one car or fewer never move ratings.
func Project(rating, fieldStrength, finishPosition, fieldSize int) int {
	if fieldSize <= 1 {
		return 0
	}
	n := float64(fieldSize)

	ratio := 1.0
	if rating > 0 && fieldStrength > 0 {
		ratio = float64(rating) / float64(fieldStrength)
	}
	expected := n / (2 * ratio)
	expected = math.Max(1, math.Min(n, expected))

	delta := int((expected - float64(finishPosition)) / n * K)
	if delta > MaxGain {
		return MaxGain
	}
	if delta < MaxLoss {
		return MaxLoss
	}
	return delta
}

// FieldStrength is the rounded mean of ratings, 0 for an empty field.
func FieldStrength(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return int(math.Round(float64(sum) / float64(len(ratings))))
}
