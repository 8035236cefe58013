package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"hydrodash/internal/models"
)

// Fetcher downloads the directory when it is served over HTTP
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Store lists stations kept in the database
type Store interface {
	GetAllStations(ctx context.Context) ([]models.Station, error)
}

// Directory is the read-only set of monitoring stations
type Directory struct {
	byKey map[string]models.Station
	keys  []string
}

// New validates stations and builds a directory. Keys must be unique.
func New(list []models.Station) (*Directory, error) {
	d := &Directory{byKey: make(map[string]models.Station, len(list))}
	for _, st := range list {
		if err := Validate(st); err != nil {
			return nil, err
		}
		if _, dup := d.byKey[st.Key]; dup {
			return nil, fmt.Errorf("duplicate station key %q", st.Key)
		}
		d.byKey[st.Key] = st
		d.keys = append(d.keys, st.Key)
	}
	sort.Strings(d.keys)
	return d, nil
}

// Parse decodes a directory document: a JSON object mapping station keys to
// station records.
func Parse(data []byte) (*Directory, error) {
	var raw map[string]models.Station
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse station directory: %w", err)
	}

	list := make([]models.Station, 0, len(raw))
	for key, st := range raw {
		st.Key = key
		list = append(list, st)
	}
	return New(list)
}

// Load reads the directory from source: "file" reads path from disk, "url"
// fetches path with fetcher, "mysql" lists the stations table.
func Load(ctx context.Context, source, path string, fetcher Fetcher, store Store) (*Directory, error) {
	switch source {
	case "file", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read station directory %s: %w", path, err)
		}
		return Parse(data)
	case "url":
		if fetcher == nil {
			return nil, fmt.Errorf("station directory source %q needs an HTTP client", source)
		}
		data, err := fetcher.Get(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch station directory %s: %w", path, err)
		}
		return Parse(data)
	case "mysql":
		if store == nil {
			return nil, fmt.Errorf("station directory source %q needs a database", source)
		}
		list, err := store.GetAllStations(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load stations from database: %w", err)
		}
		return New(list)
	default:
		return nil, fmt.Errorf("unknown station directory source %q", source)
	}
}

// Validate checks the fields every station must carry
func Validate(st models.Station) error {
	if strings.TrimSpace(st.Key) == "" {
		return fmt.Errorf("station key cannot be empty")
	}
	if strings.TrimSpace(st.Name) == "" {
		return fmt.Errorf("station %s: name cannot be empty", st.Key)
	}
	if st.Latitude < -90 || st.Latitude > 90 {
		return fmt.Errorf("station %s: latitude %v out of range", st.Key, st.Latitude)
	}
	if st.Longitude < -180 || st.Longitude > 180 {
		return fmt.Errorf("station %s: longitude %v out of range", st.Key, st.Longitude)
	}
	return nil
}

// All returns every station ordered by key
func (d *Directory) All() []models.Station {
	out := make([]models.Station, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.byKey[k])
	}
	return out
}

func (d *Directory) Get(key string) (models.Station, bool) {
	st, ok := d.byKey[key]
	return st, ok
}

func (d *Directory) Len() int {
	return len(d.keys)
}
