package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"hydrodash/internal/chart"
	"hydrodash/internal/models"
	"hydrodash/internal/series"
	"hydrodash/internal/stats"
)

const noForecastMessage = "No prediction CSV configured for this sensor."

// stationView is a directory entry as served to the page
type stationView struct {
	models.Station
	ImageURL    string `json:"imageUrl,omitempty"`
	HasForecast bool   `json:"hasForecast"`
}

type seriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type seriesResponse struct {
	Station string               `json:"station"`
	Bucket  int64                `json:"bucket"`
	Points  []seriesPoint        `json:"points"`
	Summary models.SeriesSummary `json:"summary"`
}

type pageData struct {
	Title        string
	StationCount int
	Window       string
	Version      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:        "Hydrology ML Dashboard",
		StationCount: s.directory.Len(),
		Window:       windowLabel(s.bucketer.Window),
		Version:      s.opts.Version,
	}

	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.logger.Error("failed to render dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"stations": s.directory.Len(),
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	all := s.directory.All()
	views := make([]stationView, 0, len(all))
	for _, st := range all {
		views = append(views, s.view(st))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(views),
		"stations": views,
	})
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	st, ok := s.station(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

// handleSeries returns the parsed forecast series of a station
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	st, points, ok := s.loadStationSeries(w, r)
	if !ok {
		return
	}

	resp := seriesResponse{
		Station: st.Key,
		Bucket:  s.bucketer.Bucket(),
		Points:  make([]seriesPoint, len(points)),
		Summary: stats.Summarize(points, s.opts.ZScoreThreshold),
	}
	for i, p := range points {
		resp.Points[i] = seriesPoint{Date: series.FormatDate(p.Time), Value: p.Value}
	}

	s.setCacheHeaders(w)
	writeJSON(w, http.StatusOK, resp)
}

// handleChart renders the forecast series of a station as PNG
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	st, points, ok := s.loadStationSeries(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := chart.RenderPNG(&buf, points, chart.Options{
		Title:  st.Name,
		Width:  s.opts.ChartWidth,
		Height: s.opts.ChartHeight,
	})
	if err != nil {
		s.logger.Error("failed to render chart", "station", st.Key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	s.setCacheHeaders(w)
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) station(w http.ResponseWriter, r *http.Request) (models.Station, bool) {
	key := mux.Vars(r)["key"]
	st, ok := s.directory.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("station %q not found", key))
		return models.Station{}, false
	}
	return st, true
}

func (s *Server) loadStationSeries(w http.ResponseWriter, r *http.Request) (models.Station, []models.SeriesPoint, bool) {
	st, ok := s.station(w, r)
	if !ok {
		return st, nil, false
	}

	if !st.HasForecast() {
		writeError(w, http.StatusNotFound, noForecastMessage)
		return st, nil, false
	}

	points, err := s.loader.LoadSeries(r.Context(), st.CSVPath)
	if err != nil {
		status := seriesErrorStatus(err)
		s.logger.Warn("failed to load series",
			"request_id", RequestID(r.Context()),
			"station", st.Key,
			"path", st.CSVPath,
			"status", status,
			"error", err,
		)
		writeError(w, status, err.Error())
		return st, nil, false
	}

	return st, points, true
}

func (s *Server) view(st models.Station) stationView {
	v := stationView{Station: st, HasForecast: st.HasForecast()}
	if st.EvalImagePath != "" {
		v.ImageURL = s.bucketer.Decorate(st.EvalImagePath)
	}
	return v
}

// setCacheHeaders lets browsers keep a response until the bucket rolls over
func (s *Server) setCacheHeaders(w http.ResponseWriter) {
	maxAge := int(math.Ceil(s.bucketer.Remaining().Seconds()))
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
}

// seriesErrorStatus maps a LoadSeries failure to an HTTP status
func seriesErrorStatus(err error) int {
	var fetchErr *series.FetchError
	var parseErr *series.ParseError
	var emptyErr *series.EmptyResultError

	switch {
	case errors.As(err, &fetchErr):
		if fetchErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.As(err, &emptyErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func windowLabel(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", d/time.Hour)
	}
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return d.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}
