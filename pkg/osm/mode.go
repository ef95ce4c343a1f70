// Package osm extracts logistics facilities and drivable road edges
// from OpenStreetMap PBF extracts.
package osm

import (
	"fmt"
	"strings"

	"github.com/paulmach/osm"
)

// Mode selects a logistics category; each mode maps to a fixed OSM tag
// filter for facility features.
type Mode string

const (
	ModeRoad Mode = "road"
	ModeAir  Mode = "air"
	ModeSea  Mode = "sea"
	ModeRail Mode = "rail"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeRoad, ModeAir, ModeSea, ModeRail}

// ParseMode normalizes a user-supplied mode string. The legacy aliases
// "auto" and "aero" map to road and air.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "road", "auto":
		return ModeRoad, nil
	case "air", "aero":
		return ModeAir, nil
	case "sea":
		return ModeSea, nil
	case "rail":
		return ModeRail, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want road, air, sea or rail)", s)
	}
}

var (
	roadBuildings = map[string]bool{"warehouse": true, "depot": true, "industrial": true}
	airAeroways   = map[string]bool{"terminal": true, "hangar": true, "cargo": true}
	seaManMade    = map[string]bool{"pier": true, "dock": true}
	railFeatures  = map[string]bool{"station": true, "yard": true, "cargo_terminal": true}
)

// Matches reports whether a tag set describes a facility of this mode.
func (m Mode) Matches(tags osm.Tags) bool {
	switch m {
	case ModeRoad:
		return roadBuildings[tags.Find("building")]
	case ModeAir:
		return airAeroways[tags.Find("aeroway")]
	case ModeSea:
		return tags.Find("harbour") != "" || seaManMade[tags.Find("man_made")]
	case ModeRail:
		return railFeatures[tags.Find("railway")]
	default:
		return false
	}
}
