package stats

import (
	"math"
	"testing"
	"time"

	"hydrodash/internal/models"
)

func series(values ...float64) []models.SeriesPoint {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.SeriesPoint, len(values))
	for i, v := range values {
		points[i] = models.SeriesPoint{Time: start.AddDate(0, 0, i), Value: v}
	}
	return points
}

func TestSummarize(t *testing.T) {
	got := Summarize(series(2, 4, 4, 4, 5, 5, 7, 9), 0)

	if got.Count != 8 {
		t.Errorf("Count = %d, want 8", got.Count)
	}
	if got.Min != 2 || got.Max != 9 {
		t.Errorf("Min, Max = %v, %v, want 2, 9", got.Min, got.Max)
	}
	if got.Mean != 5 {
		t.Errorf("Mean = %v, want 5", got.Mean)
	}
	if math.Abs(got.StdDev-2.138) > 0.01 {
		t.Errorf("StdDev = %v, want 2.138", got.StdDev)
	}
	if !got.First.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("First = %v", got.First)
	}
	if !got.Last.Equal(time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Last = %v", got.Last)
	}
	if len(got.Outliers) != 0 {
		t.Errorf("Outliers = %v, want none", got.Outliers)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, 2)
	if got.Count != 0 || got.Outliers != nil {
		t.Errorf("Summarize(nil) = %+v, want zero value", got)
	}
}

func TestOutliers(t *testing.T) {
	points := series(100, 101, 99, 100, 102, 98, 100, 101, 99, 100, 160)

	got := Outliers(points, 2.0)
	if len(got) != 1 {
		t.Fatalf("Outliers() = %v, want 1 outlier", got)
	}
	if got[0].Index != 10 || got[0].Value != 160 {
		t.Errorf("Outliers()[0] = %+v, want index 10 value 160", got[0])
	}
	if got[0].ZScore <= 2.0 || got[0].Severity == "" {
		t.Errorf("Outliers()[0] z = %v severity = %q", got[0].ZScore, got[0].Severity)
	}

	if got := Outliers(series(5, 5, 5, 5), 2.0); got != nil {
		t.Errorf("Outliers() for a flat series = %v, want nil", got)
	}
	if got := Outliers(series(1, 100), 0.1); got != nil {
		t.Errorf("Outliers() for two points = %v, want nil", got)
	}
}

func TestCalculateZScore(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		mean   float64
		stdDev float64
		want   float64
	}{
		{name: "value above mean", value: 100.0, mean: 50.0, stdDev: 25.0, want: 2.0},
		{name: "value below mean", value: 25.0, mean: 50.0, stdDev: 25.0, want: -1.0},
		{name: "value equals mean", value: 50.0, mean: 50.0, stdDev: 25.0, want: 0.0},
		{name: "zero standard deviation", value: 50.0, mean: 50.0, stdDev: 0.0, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateZScore(tt.value, tt.mean, tt.stdDev)
			if got != tt.want {
				t.Errorf("CalculateZScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOutlier(t *testing.T) {
	tests := []struct {
		name   string
		zScore float64
		want   bool
	}{
		{name: "high positive outlier", zScore: 2.5, want: true},
		{name: "high negative outlier", zScore: -2.5, want: true},
		{name: "not an outlier", zScore: 1.5, want: false},
		{name: "boundary case - exactly 2.0", zScore: 2.0, want: false},
		{name: "zero", zScore: 0.0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsOutlier(tt.zScore, DefaultZScoreThreshold)
			if got != tt.want {
				t.Errorf("IsOutlier(%f) = %v, want %v", tt.zScore, got, tt.want)
			}
		})
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		zScore float64
		want   string
	}{
		{3.5, "high"},
		{-3.5, "high"},
		{2.8, "medium"},
		{-2.8, "medium"},
		{2.1, "low"},
		{3.0, "medium"},
		{2.5, "low"},
	}

	for _, tt := range tests {
		got := severity(tt.zScore, 2.0)
		if got != tt.want {
			t.Errorf("severity(%f) = %v, want %v", tt.zScore, got, tt.want)
		}
	}
}

func TestCalculateStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "standard case", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: 2.138},
		{name: "all same values", values: []float64{5, 5, 5}, want: 0},
		{name: "single value", values: []float64{42}, want: 0},
		{name: "empty slice", values: []float64{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateStdDev(tt.values, calculateMean(tt.values))
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("calculateStdDev() = %v, want %v", got, tt.want)
			}
		})
	}
}
