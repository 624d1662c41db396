package geo

import (
	"math"
	"testing"
)

func TestMiles(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Coordinate
		want    float64
		epsilon float64
	}{
		{
			name: "same point",
			a:    Coordinate{Lat: 39.7392, Lng: -104.9903},
			b:    Coordinate{Lat: 39.7392, Lng: -104.9903},
			want: 0,
		},
		{
			name:    "one degree of latitude",
			a:       Coordinate{Lat: 39, Lng: -105},
			b:       Coordinate{Lat: 40, Lng: -105},
			want:    EarthRadiusMiles * math.Pi / 180,
			epsilon: 1e-9,
		},
		{
			name:    "denver to boulder",
			a:       Coordinate{Lat: 39.7392, Lng: -104.9903},
			b:       Coordinate{Lat: 40.0150, Lng: -105.2705},
			want:    24.0,
			epsilon: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Miles(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.epsilon {
				t.Errorf("Miles() = %v, want %v ± %v", got, tt.want, tt.epsilon)
			}
			if back := Miles(tt.b, tt.a); math.Abs(back-got) > 1e-9 {
				t.Errorf("Miles() not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	origin := Coordinate{Lat: 39.7588, Lng: -105.0181}
	// 0.001 degree of latitude is ~0.069 miles.
	near := Coordinate{Lat: origin.Lat + 0.001, Lng: origin.Lng}
	far := Coordinate{Lat: origin.Lat + 0.01, Lng: origin.Lng}

	if !Within(origin, near, StaticProximityMiles) {
		t.Errorf("near point (%.3f mi) should be within %.2f mi", Miles(origin, near), StaticProximityMiles)
	}
	if Within(origin, far, MovementThresholdMiles) {
		t.Errorf("far point (%.3f mi) should not be within %.2f mi", Miles(origin, far), MovementThresholdMiles)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{Lat: 39.7, Lng: -104.9}, true},
		{Coordinate{Lat: 91, Lng: 0}, false},
		{Coordinate{Lat: 0, Lng: -181}, false},
		{Coordinate{Lat: math.NaN(), Lng: 0}, false},
	}
	for _, tt := range tests {
		if got := tt.c.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestQuantize(t *testing.T) {
	got := Quantize(Coordinate{Lat: 39.758812, Lng: -105.018149})
	want := Coordinate{Lat: 39.7588, Lng: -105.0181}
	if got != want {
		t.Errorf("Quantize() = %v, want %v", got, want)
	}
}
