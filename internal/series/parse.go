package series

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"hydrodash/internal/models"
)

// Column names of the prediction CSV header
const (
	DateColumn  = "date"
	ValueColumn = "water_level_cm"
)

// DateLayout is the calendar date format of the date column
const DateLayout = "2006-01-02"

// Parse reads a prediction CSV with a header row and returns its valid rows
// as points sorted by date. Rows with a missing or invalid date or value are
// dropped. path is only used for error context.
func Parse(path string, r io.Reader) ([]models.SeriesPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &EmptyResultError{Path: path}
		}
		return nil, parseError(path, err)
	}

	dateIdx, valueIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case name == DateColumn && dateIdx < 0:
			dateIdx = i
		case name == ValueColumn && valueIdx < 0:
			valueIdx = i
		}
	}

	var points []models.SeriesPoint
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, parseError(path, err)
		}

		if p, ok := parseRow(record, dateIdx, valueIdx); ok {
			points = append(points, p)
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	if len(points) == 0 {
		return nil, &EmptyResultError{Path: path}
	}

	return points, nil
}

// parseRow converts one record into a point; ok is false when the row must
// be dropped
func parseRow(record []string, dateIdx, valueIdx int) (models.SeriesPoint, bool) {
	rawDate, ok := field(record, dateIdx)
	if !ok {
		return models.SeriesPoint{}, false
	}
	rawValue, ok := field(record, valueIdx)
	if !ok {
		return models.SeriesPoint{}, false
	}

	t, ok := ParseDate(rawDate)
	if !ok {
		return models.SeriesPoint{}, false
	}

	v, err := strconv.ParseFloat(rawValue, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.SeriesPoint{}, false
	}

	return models.SeriesPoint{Time: t, Value: v}, true
}

func field(record []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(record) {
		return "", false
	}
	s := strings.TrimSpace(record[idx])
	return s, s != ""
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight. RFC 3339
// timestamps are accepted as well and converted to UTC.
func ParseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD, the label format of the chart axis
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func parseError(path string, err error) *ParseError {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Path: path, Line: csvErr.Line, Message: csvErr.Error()}
	}
	return &ParseError{Path: path, Message: err.Error()}
}
