package stats

import (
	"math"

	"hydrodash/internal/models"
)

// DefaultZScoreThreshold flags values more than 2 std devs from the mean
const DefaultZScoreThreshold = 2.0

// Summarize describes points, which must be in ascending date order. Points
// whose |z-score| exceeds threshold are reported as outliers; a non-positive
// threshold uses DefaultZScoreThreshold.
func Summarize(points []models.SeriesPoint, threshold float64) models.SeriesSummary {
	if len(points) == 0 {
		return models.SeriesSummary{}
	}

	values := make([]float64, len(points))
	min, max := points[0].Value, points[0].Value
	for i, p := range points {
		values[i] = p.Value
		min = math.Min(min, p.Value)
		max = math.Max(max, p.Value)
	}

	mean := calculateMean(values)
	stdDev := calculateStdDev(values, mean)

	return models.SeriesSummary{
		Count:    len(points),
		First:    points[0].Time,
		Last:     points[len(points)-1].Time,
		Min:      min,
		Max:      max,
		Mean:     mean,
		StdDev:   stdDev,
		Outliers: outliers(points, mean, stdDev, threshold),
	}
}

// Outliers returns the points of a series whose |z-score| exceeds threshold
func Outliers(points []models.SeriesPoint, threshold float64) []models.Outlier {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	mean := calculateMean(values)
	return outliers(points, mean, calculateStdDev(values, mean), threshold)
}

func outliers(points []models.SeriesPoint, mean, stdDev, threshold float64) []models.Outlier {
	if threshold <= 0 {
		threshold = DefaultZScoreThreshold
	}
	// no variation, no outliers
	if len(points) < 3 || stdDev == 0 {
		return nil
	}

	var out []models.Outlier
	for i, p := range points {
		zScore := CalculateZScore(p.Value, mean, stdDev)
		if !IsOutlier(zScore, threshold) {
			continue
		}
		out = append(out, models.Outlier{
			Index:    i,
			Time:     p.Time,
			Value:    p.Value,
			ZScore:   zScore,
			Severity: severity(zScore, threshold),
		})
	}
	return out
}

// CalculateZScore calculates the Z-score for a value given mean and standard deviation
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// IsOutlier checks if a Z-score lies further than threshold std devs from the mean
func IsOutlier(zScore, threshold float64) bool {
	return math.Abs(zScore) > threshold
}

func severity(zScore, threshold float64) string {
	absZScore := math.Abs(zScore)
	if absZScore > threshold*1.5 {
		return "high"
	} else if absZScore > threshold*1.25 {
		return "medium"
	}
	return "low"
}

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sample standard deviation
func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
