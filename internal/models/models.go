package models

import "time"

// Station is one entry of the station directory. Optional fields are empty
// when the directory does not configure them.
type Station struct {
	Key           string            `json:"key"`
	Name          string            `json:"name"`
	StationID     int               `json:"station_id"`
	Latitude      float64           `json:"latitude"`
	Longitude     float64           `json:"longitude"`
	Summary       string            `json:"summary,omitempty"`
	Href          string            `json:"href,omitempty"`
	Periods       map[string]string `json:"periods,omitempty"`
	CSVPath       string            `json:"csvPath,omitempty"`
	EvalImagePath string            `json:"evalImagePath,omitempty"`
}

// HasForecast reports whether a prediction CSV is configured for the station
func (s Station) HasForecast() bool {
	return s.CSVPath != ""
}

// SeriesPoint is one (date, value) observation of a forecast series
type SeriesPoint struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"y"`
}

// SeriesSummary describes a loaded series
type SeriesSummary struct {
	Count    int       `json:"count"`
	First    time.Time `json:"first"`
	Last     time.Time `json:"last"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Mean     float64   `json:"mean"`
	StdDev   float64   `json:"std_dev"`
	Outliers []Outlier `json:"outliers,omitempty"`
}

// Outlier is a point whose z-score exceeds the configured threshold
type Outlier struct {
	Index    int       `json:"index"`
	Time     time.Time `json:"t"`
	Value    float64   `json:"y"`
	ZScore   float64   `json:"z_score"`
	Severity string    `json:"severity"` // "low", "medium", "high"
}
