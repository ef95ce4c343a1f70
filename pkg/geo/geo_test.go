package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "one degree of latitude at the equator",
			lat1: 0, lon1: 0,
			lat2: 1, lon2: 0,
			wantMeters:       111_000, // ~111 km
			tolerancePercent: 1,
		},
		{
			name: "same point",
			lat1: 59.9343, lon1: 30.3351,
			lat2: 59.9343, lon2: 30.3351,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name: "St Petersburg center to Pulkovo",
			lat1: 59.9343, lon1: 30.3351,
			lat2: 59.8003, lon2: 30.2625,
			wantMeters:       15_500, // ~15.5 km great-circle
			tolerancePercent: 2,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lon1: -0.1278,
			lat2: 48.8566, lon2: 2.3522,
			wantMeters:       343_500, // ~343.5 km
			tolerancePercent: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	d1 := Haversine(59.9343, 30.3351, 59.8723, 30.3156)
	d2 := Haversine(59.8723, 30.3156, 59.9343, 30.3351)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("asymmetric: %f vs %f", d1, d2)
	}
}

func TestIsFiniteLatLon(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"valid", 59.9, 30.3, true},
		{"lat NaN", math.NaN(), 30.3, false},
		{"lon Inf", 59.9, math.Inf(1), false},
		{"lat out of range", 91, 0, false},
		{"lon out of range", 0, -181, false},
		{"extremes", -90, 180, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFiniteLatLon(tt.lat, tt.lon); got != tt.want {
				t.Errorf("IsFiniteLatLon(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestBBox(t *testing.T) {
	b := BBox{West: 30.0, South: 59.7, East: 30.6, North: 60.0}

	if !b.Valid() {
		t.Error("expected valid bbox")
	}
	if !b.Contains(59.9, 30.3) {
		t.Error("expected point inside")
	}
	if b.Contains(59.9, 31.0) {
		t.Error("expected point outside")
	}

	lat, lon := b.Center()
	if math.Abs(lat-59.85) > 1e-9 || math.Abs(lon-30.3) > 1e-9 {
		t.Errorf("Center = (%f, %f), want (59.85, 30.3)", lat, lon)
	}

	inverted := BBox{West: 30.6, South: 59.7, East: 30.0, North: 60.0}
	if inverted.Valid() {
		t.Error("expected inverted bbox to be invalid")
	}
	if !(BBox{}).IsZero() {
		t.Error("zero bbox should report IsZero")
	}
}

func BenchmarkHaversine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Haversine(59.9343, 30.3351, 59.8003, 30.2625)
	}
}
