package system

// System is a star system as returned by the systems listing
type System struct {
	Symbol       string        `json:"symbol"`
	SectorSymbol string        `json:"sectorSymbol"`
	Type         string        `json:"type"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Waypoints    []WaypointRef `json:"waypoints"`
	Factions     []Faction     `json:"factions"`
}

// Faction identifies a faction present in a system
type Faction struct {
	Symbol string `json:"symbol"`
}

// Orbital references a waypoint orbiting another
type Orbital struct {
	Symbol string `json:"symbol"`
}

// WaypointRef is the shallow waypoint entry carried inside a system listing.
// Coordinates come from the listing; traits require a detail fetch.
type WaypointRef struct {
	Symbol   string    `json:"symbol"`
	Type     string    `json:"type"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Orbitals []Orbital `json:"orbitals"`
	Orbits   string    `json:"orbits,omitempty"`
}

// OrbitalSymbols returns the symbols of the waypoints orbiting this one
func (w *WaypointRef) OrbitalSymbols() []string {
	symbols := make([]string, len(w.Orbitals))
	for i, o := range w.Orbitals {
		symbols[i] = o.Symbol
	}
	return symbols
}
