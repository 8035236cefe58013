package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hydrodash/internal/models"
	"hydrodash/internal/series"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 360

	xAxisName = "Date"
	yAxisName = "Water level (cm)"

	// yPadding is subtracted from the smallest value to place the Y axis floor
	yPadding = 5.0
)

var ErrNoPoints = errors.New("chart: series has no points")

// Options controls the rendered image
type Options struct {
	Title  string
	Width  int
	Height int
}

// RenderPNG draws points as a line chart and writes it to w as PNG
func RenderPNG(w io.Writer, points []models.SeriesPoint, opts Options) error {
	ch, err := build(points, opts)
	if err != nil {
		return err
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func build(points []models.SeriesPoint, opts Options) (gochart.Chart, error) {
	if len(points) == 0 {
		return gochart.Chart{}, ErrNoPoints
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	min, max := points[0].Value, points[0].Value
	for i, p := range points {
		xs[i] = p.Time
		ys[i] = p.Value
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}

	// go-chart needs a non-zero X range
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}

	return gochart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:           xAxisName,
			ValueFormatter: dateFormatter,
		},
		YAxis: gochart.YAxis{
			Name:           yAxisName,
			Range:          &gochart.ContinuousRange{Min: min - yPadding, Max: max},
			ValueFormatter: levelFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "water_level_cm",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2,
				},
			},
		},
	}, nil
}

func dateFormatter(v interface{}) string {
	switch tv := v.(type) {
	case time.Time:
		return series.FormatDate(tv)
	case float64:
		// TimeFromFloat64 yields local time
		return series.FormatDate(gochart.TimeFromFloat64(tv).UTC())
	}
	return ""
}

func levelFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
