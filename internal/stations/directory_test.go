package stations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hydrodash/internal/models"
)

const sampleDirectory = `{
  "vindeln": {
    "name": "Vindelälven Sorsele",
    "station_id": 2357,
    "latitude": 65.5364,
    "longitude": 17.5261,
    "summary": "Unregulated river in the north.",
    "periods": {"train": "1990-2015", "test": "2016-2023"},
    "csvPath": "/data/predictions/vindeln.csv",
    "evalImagePath": "/data/eval/vindeln.png"
  },
  "dal": {
    "name": "Dalälven Mora",
    "station_id": 1001,
    "latitude": 61.0,
    "longitude": 14.5
  }
}`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleDirectory))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}

	all := d.All()
	if all[0].Key != "dal" || all[1].Key != "vindeln" {
		t.Errorf("All() keys = %v, %v, want dal, vindeln", all[0].Key, all[1].Key)
	}

	st, ok := d.Get("vindeln")
	if !ok {
		t.Fatal("Get(vindeln) not found")
	}
	if st.StationID != 2357 {
		t.Errorf("StationID = %d, want 2357", st.StationID)
	}
	if !st.HasForecast() {
		t.Error("HasForecast() = false, want true")
	}
	if st.Periods["test"] != "2016-2023" {
		t.Errorf("Periods[test] = %q", st.Periods["test"])
	}

	dal, _ := d.Get("dal")
	if dal.HasForecast() {
		t.Error("dal.HasForecast() = true, want false")
	}

	if _, ok := d.Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `[`},
		{"array", `[{"name": "x"}]`},
		{"missing name", `{"a": {"latitude": 60, "longitude": 15}}`},
		{"latitude out of range", `{"a": {"name": "A", "latitude": 91, "longitude": 15}}`},
		{"longitude out of range", `{"a": {"name": "A", "latitude": 60, "longitude": -181}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	d, _ := Parse([]byte(sampleDirectory))
	all := d.All()
	all[0].Name = "changed"

	st, _ := d.Get(all[0].Key)
	if st.Name == "changed" {
		t.Error("All() should not expose directory storage")
	}
}

func TestNew_DuplicateKey(t *testing.T) {
	st := models.Station{Key: "a", Name: "A", Latitude: 60, Longitude: 15}
	if _, err := New([]models.Station{st, st}); err == nil {
		t.Error("New() expected error for duplicate key")
	}
}

type fakeFetcher struct {
	data []byte
	err  error
	path string
}

func (f *fakeFetcher) Get(ctx context.Context, path string) ([]byte, error) {
	f.path = path
	return f.data, f.err
}

type fakeStore struct {
	stations []models.Station
	err      error
}

func (s fakeStore) GetAllStations(ctx context.Context) ([]models.Station, error) {
	return s.stations, s.err
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "sensors.json")
	if err := os.WriteFile(path, []byte(sampleDirectory), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(ctx, "file", path, nil, nil)
	if err != nil {
		t.Fatalf("Load(file) error = %v", err)
	}
	if d.Len() != 2 {
		t.Errorf("Load(file).Len() = %d, want 2", d.Len())
	}

	f := &fakeFetcher{data: []byte(sampleDirectory)}
	d, err = Load(ctx, "url", "/data/sensors.json", f, nil)
	if err != nil {
		t.Fatalf("Load(url) error = %v", err)
	}
	if d.Len() != 2 || f.path != "/data/sensors.json" {
		t.Errorf("Load(url) len = %d path = %q", d.Len(), f.path)
	}

	store := fakeStore{stations: []models.Station{{Key: "x", Name: "X", Latitude: 1, Longitude: 2}}}
	d, err = Load(ctx, "mysql", "", nil, store)
	if err != nil {
		t.Fatalf("Load(mysql) error = %v", err)
	}
	if d.Len() != 1 {
		t.Errorf("Load(mysql).Len() = %d, want 1", d.Len())
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		source  string
		path    string
		fetcher Fetcher
		store   Store
	}{
		{name: "missing file", source: "file", path: "/nonexistent/sensors.json"},
		{name: "url without client", source: "url", path: "/x"},
		{name: "url fetch fails", source: "url", path: "/x", fetcher: &fakeFetcher{err: boom}},
		{name: "mysql without db", source: "mysql"},
		{name: "mysql query fails", source: "mysql", store: fakeStore{err: boom}},
		{name: "unknown source", source: "s3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(ctx, tt.source, tt.path, tt.fetcher, tt.store); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}
