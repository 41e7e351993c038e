package system

import "math"

// Trait is a waypoint capability (MARKETPLACE, MINERAL_DEPOSITS, ...)
type Trait struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Chart holds discovery metadata for a charted waypoint
type Chart struct {
	WaypointSymbol string `json:"waypointSymbol"`
	SubmittedBy    string `json:"submittedBy"`
	SubmittedOn    string `json:"submittedOn"`
}

// WaypointDetail is the full waypoint record from the detail endpoint
type WaypointDetail struct {
	Symbol            string    `json:"symbol"`
	SystemSymbol      string    `json:"systemSymbol"`
	Type              string    `json:"type"`
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	Orbitals          []Orbital `json:"orbitals"`
	Orbits            string    `json:"orbits,omitempty"`
	Traits            []Trait   `json:"traits"`
	Faction           *Faction  `json:"faction,omitempty"`
	Chart             *Chart    `json:"chart,omitempty"`
	UnderConstruction bool      `json:"isUnderConstruction"`
}

// TraitMarketplace marks waypoints that expose trade goods
const TraitMarketplace = "MARKETPLACE"

// TraitShipyard marks waypoints that sell ships
const TraitShipyard = "SHIPYARD"

// MineableTraits are the waypoint traits a ship can extract resources from
var MineableTraits = map[string]bool{
	"MINERAL_DEPOSITS":        true,
	"COMMON_METAL_DEPOSITS":   true,
	"PRECIOUS_METAL_DEPOSITS": true,
	"RARE_METAL_DEPOSITS":     true,
	"METHANE_POOLS":           true,
	"ICE_CRYSTALS":            true,
	"EXPLOSIVE_GASES":         true,
}

// HasTrait reports whether the waypoint carries the given trait symbol
func (w *WaypointDetail) HasTrait(symbol string) bool {
	for _, t := range w.Traits {
		if t.Symbol == symbol {
			return true
		}
	}
	return false
}

// IsMineable reports whether any of the waypoint's traits is mineable
func (w *WaypointDetail) IsMineable() bool {
	for _, t := range w.Traits {
		if MineableTraits[t.Symbol] {
			return true
		}
	}
	return false
}

// Distance computes the straight-line distance between two coordinate pairs
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// DistanceTo computes the straight-line distance to another waypoint ref
func (w *WaypointRef) DistanceTo(other *WaypointRef) float64 {
	return Distance(w.X, w.Y, other.X, other.Y)
}
