package osm

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"road", ModeRoad, false},
		{"auto", ModeRoad, false},
		{"AIR", ModeAir, false},
		{"aero", ModeAir, false},
		{"sea", ModeSea, false},
		{"rail", ModeRail, false},
		{"submarine", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestModeMatches(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		tags osm.Tags
		want bool
	}{
		{
			name: "road warehouse",
			mode: ModeRoad,
			tags: osm.Tags{{Key: "building", Value: "warehouse"}},
			want: true,
		},
		{
			name: "road residential building",
			mode: ModeRoad,
			tags: osm.Tags{{Key: "building", Value: "residential"}},
			want: false,
		},
		{
			name: "air cargo terminal",
			mode: ModeAir,
			tags: osm.Tags{{Key: "aeroway", Value: "cargo"}},
			want: true,
		},
		{
			name: "sea harbour flag",
			mode: ModeSea,
			tags: osm.Tags{{Key: "harbour", Value: "yes"}},
			want: true,
		},
		{
			name: "sea pier",
			mode: ModeSea,
			tags: osm.Tags{{Key: "man_made", Value: "pier"}},
			want: true,
		},
		{
			name: "rail yard",
			mode: ModeRail,
			tags: osm.Tags{{Key: "railway", Value: "yard"}},
			want: true,
		},
		{
			name: "rail halt",
			mode: ModeRail,
			tags: osm.Tags{{Key: "railway", Value: "halt"}},
			want: false,
		},
		{
			name: "empty tags",
			mode: ModeRoad,
			tags: nil,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Matches(tt.tags); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDrivable(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "residential road",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: true,
		},
		{
			name: "footway",
			tags: osm.Tags{{Key: "highway", Value: "footway"}},
			want: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			want: false,
		},
		{
			name: "motor_vehicle=no",
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "motor_vehicle", Value: "no"},
			},
			want: false,
		},
		{
			name: "pedestrian plaza",
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "area", Value: "yes"},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDrivable(tt.tags); got != tt.want {
				t.Errorf("isDrivable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name    string
		tags    osm.Tags
		wantFwd bool
		wantBwd bool
	}{
		{
			name:    "default bidirectional",
			tags:    osm.Tags{{Key: "highway", Value: "residential"}},
			wantFwd: true, wantBwd: true,
		},
		{
			name:    "motorway implied oneway",
			tags:    osm.Tags{{Key: "highway", Value: "motorway"}},
			wantFwd: true, wantBwd: false,
		},
		{
			name: "explicit oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantFwd: true, wantBwd: false,
		},
		{
			name: "reversed oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantFwd: false, wantBwd: true,
		},
		{
			name: "reversible skipped",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reversible"},
			},
			wantFwd: false, wantBwd: false,
		},
		{
			name: "roundabout",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantFwd: true, wantBwd: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := directionFlags(tt.tags)
			if fwd != tt.wantFwd || bwd != tt.wantBwd {
				t.Errorf("directionFlags = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantFwd, tt.wantBwd)
			}
		})
	}
}

func TestBuildRing(t *testing.T) {
	coords := map[osm.NodeID]orb.Point{
		1: {30.0, 59.0},
		2: {30.1, 59.0},
		3: {30.1, 59.1},
	}

	ring, ok := buildRing([]osm.NodeID{1, 2, 3, 1}, coords)
	if !ok {
		t.Fatal("expected closed ring to resolve")
	}
	if len(ring) != 4 {
		t.Errorf("ring length = %d, want 4", len(ring))
	}

	if _, ok := buildRing([]osm.NodeID{1, 2, 3}, coords); ok {
		t.Error("open way must not form a ring")
	}
	if _, ok := buildRing([]osm.NodeID{1, 2, 9, 1}, coords); ok {
		t.Error("missing coordinate must not form a ring")
	}
}

func TestIsClosed(t *testing.T) {
	closed := osm.WayNodes{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 1}}
	if !isClosed(closed) {
		t.Error("expected closed way")
	}
	open := osm.WayNodes{{ID: 1}, {ID: 2}, {ID: 3}}
	if isClosed(open) {
		t.Error("expected open way")
	}
}
