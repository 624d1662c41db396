package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/rec-schedule/internal/app"
	"github.com/pfrederiksen/rec-schedule/internal/config"
	"github.com/pfrederiksen/rec-schedule/internal/distance"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, configure func(cfg *config.Config)) http.Handler {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"week_manifest.json": `{"days": [
			{"date": "2025-01-13", "day_name": "Monday", "display_date": "January 13", "file": "denver_2025_01_13.json"},
			{"date": "2025-01-14", "day_name": "Tuesday", "display_date": "January 14", "file": "denver_2025_01_14.json"}
		]}`,
		"denver_2025_01_13.json": `{"date": "2025-01-13", "day_name": "Monday", "display_date": "January 13", "events": [
			{"start_time": "9:00am", "end_time": "10:00am", "class_name": "Yoga", "location": "Ashland"},
			{"start_time": "6:00am", "end_time": "7:00am", "class_name": "Lap Swim", "location": "Barnum"},
			{"start_time": "7:30am", "end_time": "8:30am", "class_name": "Spin", "location": "Barnum", "cancelled": true}
		]}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Data = dir
	cfg.StateDir = t.TempDir()
	cfg.Timezone = "UTC"
	if configure != nil {
		configure(cfg)
	}

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return New(a).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
}

func TestStatusCodes(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"health", "/health", http.StatusOK},
		{"facilities", "/api/facilities", http.StatusOK},
		{"weeks", "/api/weeks", http.StatusOK},
		{"current week", "/api/weeks/current", http.StatusOK},
		{"week out of range", "/api/weeks/4", http.StatusNotFound},
		{"bad week index", "/api/weeks/next", http.StatusBadRequest},
		{"day", "/api/days/2025-01-13", http.StatusOK},
		{"missing day file", "/api/days/2025-01-14", http.StatusNotFound},
		{"invalid date", "/api/days/01-13-2025", http.StatusBadRequest},
		{"bad sort", "/api/days/2025-01-13?sort=closest", http.StatusBadRequest},
		{"bad mode", "/api/days/2025-01-13?mode=teleport", http.StatusBadRequest},
		{"bad window", "/api/days/2025-01-13?window=9pm-6am", http.StatusBadRequest},
		{"half location", "/api/days/2025-01-13?lat=39.7", http.StatusBadRequest},
		{"location out of range", "/api/distances?lat=95&lng=0", http.StatusBadRequest},
		{"mode without location", "/api/distances?mode=walking", http.StatusUnprocessableEntity},
		{"metrics", "/api/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d (body %s)", tt.target, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDay_FiltersAndSorts(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/days/2025-01-13?hide_cancelled=true&sort=walking&lat=39.7215&lng=-105.0333")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var res app.DayResult
	decode(t, rec, &res)

	if res.View.EventCount != 2 {
		t.Errorf("EventCount = %d, want 2 with cancelled hidden", res.View.EventCount)
	}
	if res.View.Mode != facility.Walking {
		t.Errorf("Mode = %s, want walking from sort", res.View.Mode)
	}
	if len(res.View.Groups) != 2 || res.View.Groups[0].Name != "Barnum" {
		t.Fatalf("groups = %+v, want Barnum first (origin is at Barnum)", res.View.Groups)
	}
	if res.Distances == nil || res.Distances.Source != distance.SourceEstimate {
		t.Errorf("distances = %+v, want estimate", res.Distances)
	}
}

func TestWeeks(t *testing.T) {
	h := newTestServer(t)

	var body struct {
		Current int `json:"current"`
		Weeks   []struct {
			File string `json:"file"`
		} `json:"weeks"`
	}
	decode(t, get(t, h, "/api/weeks"), &body)

	if body.Current != 0 || len(body.Weeks) != 1 || body.Weeks[0].File != "week_manifest.json" {
		t.Errorf("weeks = %+v", body)
	}
}

func TestDistances(t *testing.T) {
	h := newTestServer(t)

	var res distance.Result
	decode(t, get(t, h, "/api/distances?lat=39.7593&lng=-105.0165"), &res)
	if res.Source != distance.SourceEstimate || len(res.Centers) != facility.Builtin().Len() {
		t.Errorf("source = %s, centers = %d", res.Source, len(res.Centers))
	}

	// A second call nearby is served from the geo cache.
	decode(t, get(t, h, "/api/distances?lat=39.7594&lng=-105.0165"), &res)
	if res.Source != distance.SourceCache {
		t.Errorf("second source = %s, want cache", res.Source)
	}

	var byMode struct {
		Source  distance.Source `json:"source"`
		Mode    facility.Mode   `json:"mode"`
		Centers []struct {
			Facility string          `json:"facility"`
			Record   facility.Record `json:"record"`
		} `json:"centers"`
	}
	decode(t, get(t, h, "/api/distances?lat=39.7593&lng=-105.0165&mode=bike"), &byMode)
	if byMode.Mode != facility.Biking || len(byMode.Centers) == 0 {
		t.Fatalf("mode response = %+v", byMode)
	}
	if !byMode.Centers[0].Record.Estimated {
		t.Error("records without routing should be estimated")
	}
}

func TestDistances_ModeUsesStaticTable(t *testing.T) {
	tablePath := filepath.Join(t.TempDir(), "distances.json")
	table := `{"origin": "2475 W 29th Ave, Denver, CO", "centers": [
		{"name": "Ashland Recreation Center", "driving_miles": 0.1, "driving_minutes": 1, "biking_miles": 0.1, "biking_minutes": 1, "walking_miles": 0.1, "walking_minutes": 2},
		{"name": "Barnum Recreation Center", "driving_miles": 3.4, "driving_minutes": 9, "biking_miles": 3.6, "biking_minutes": 22, "walking_miles": 3.2, "walking_minutes": 64}
	]}`
	if err := os.WriteFile(tablePath, []byte(table), 0644); err != nil {
		t.Fatal(err)
	}

	h := newTestServerWith(t, func(cfg *config.Config) {
		cfg.Static.Path = tablePath
		cfg.Static.Origin = &geo.Coordinate{Lat: 39.7593, Lng: -105.0165}
	})

	var byMode struct {
		Source  distance.Source    `json:"source"`
		Centers []distance.ModeRow `json:"centers"`
	}
	decode(t, get(t, h, "/api/distances?lat=39.7593&lng=-105.0165&mode=driving"), &byMode)
	if byMode.Source != distance.SourceStatic {
		t.Fatalf("source = %s, want static", byMode.Source)
	}
	if len(byMode.Centers) != 2 {
		t.Fatalf("got %d centers, want the 2 static rows", len(byMode.Centers))
	}
	barnum := byMode.Centers[1]
	if barnum.Facility != "Barnum Recreation Center" || barnum.Record.Miles != 3.4 || barnum.Record.Minutes != 9 {
		t.Errorf("Barnum driving = %+v", barnum)
	}
	if barnum.Record.Estimated {
		t.Error("static records should not be estimated")
	}
}

func TestCalendar(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/days/2025-01-13/calendar.ics?facility=Barnum")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if n := strings.Count(rec.Body.String(), "BEGIN:VEVENT"); n != 2 {
		t.Errorf("VEVENT count = %d, want 2 for Barnum", n)
	}

	rec = get(t, h, "/api/weeks/current/calendar.ics")
	if rec.Code != http.StatusOK {
		t.Fatalf("week status = %d: %s", rec.Code, rec.Body.String())
	}
	if n := strings.Count(rec.Body.String(), "BEGIN:VEVENT"); n != 3 {
		t.Errorf("week VEVENT count = %d, want 3", n)
	}
}
