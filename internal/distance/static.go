package distance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
)

// ErrNoStaticOrigin is returned when a static table has no usable origin.
var ErrNoStaticOrigin = errors.New("static distance table has no origin coordinate")

// StaticTable is a precomputed set of distances from one fixed origin.
type StaticTable struct {
	Origin  geo.Coordinate
	Centers []facility.Distances
}

type staticFile struct {
	Origin  json.RawMessage `json:"origin"`
	Centers []staticRow     `json:"centers"`
}

type staticRow struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`

	DrivingMiles   *float64 `json:"driving_miles"`
	DrivingMinutes *float64 `json:"driving_minutes"`
	DrivingTime    *string  `json:"driving_time"`
	BikingMiles    *float64 `json:"biking_miles"`
	BikingMinutes  *float64 `json:"biking_minutes"`
	BikingTime     *string  `json:"biking_time"`
	WalkingMiles   *float64 `json:"walking_miles"`
	WalkingMinutes *float64 `json:"walking_minutes"`
	WalkingTime    *string  `json:"walking_time"`
}

// LoadStaticTable reads a static distance table from path.
// The table's origin is taken from the file when it holds a {lat,lng} object; otherwise
// fallback is used (files written by the generator record the origin as an address).
func LoadStaticTable(path string, fallback *geo.Coordinate) (*StaticTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading static table: %w", err)
	}
	return ParseStaticTable(data, fallback)
}

// ParseStaticTable decodes a static distance table.
func ParseStaticTable(data []byte, fallback *geo.Coordinate) (*StaticTable, error) {
	var file staticFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing static table: %w", err)
	}

	table := &StaticTable{}

	var origin geo.Coordinate
	switch {
	case len(file.Origin) > 0 && file.Origin[0] == '{':
		if err := json.Unmarshal(file.Origin, &origin); err != nil {
			return nil, fmt.Errorf("parsing static table origin: %w", err)
		}
		table.Origin = origin
	case fallback != nil:
		table.Origin = *fallback
	default:
		return nil, ErrNoStaticOrigin
	}
	if !table.Origin.Valid() {
		return nil, fmt.Errorf("static table origin %v is out of range", table.Origin)
	}

	table.Centers = make([]facility.Distances, 0, len(file.Centers))
	for _, row := range file.Centers {
		d := facility.Distances{Name: row.Name, Address: row.Address}
		d.Driving = staticRecord(row.DrivingMiles, row.DrivingMinutes, row.DrivingTime)
		d.Biking = staticRecord(row.BikingMiles, row.BikingMinutes, row.BikingTime)
		d.Walking = staticRecord(row.WalkingMiles, row.WalkingMinutes, row.WalkingTime)
		table.Centers = append(table.Centers, d)
	}

	return table, nil
}

// staticRecord builds a record from nullable columns. A null column means the generator
// failed to route that facility, and yields a zero record.
func staticRecord(miles, minutes *float64, label *string) facility.Record {
	if miles == nil || minutes == nil {
		return facility.Record{}
	}
	rec := facility.Record{
		Miles:   math.Round(*miles*10) / 10,
		Minutes: int(math.Round(*minutes)),
	}
	if label != nil && *label != "" {
		rec.TimeLabel = *label
	} else {
		rec.TimeLabel = facility.FormatDuration(rec.Minutes)
	}
	return rec
}
