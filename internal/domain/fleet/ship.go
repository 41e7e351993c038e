package fleet

// Ship is the cached representation of an owned ship. Fields mirror the API
// payload; the executor patches them in place from action responses instead
// of refetching.
type Ship struct {
	Symbol       string       `json:"symbol"`
	Registration Registration `json:"registration"`
	Nav          Nav          `json:"nav"`
	Engine       Engine       `json:"engine"`
	Fuel         Fuel         `json:"fuel"`
	Cargo        Cargo        `json:"cargo"`
	Cooldown     Cooldown     `json:"cooldown"`
}

// Registration carries the ship's faction registration and role
type Registration struct {
	Name          string `json:"name"`
	FactionSymbol string `json:"factionSymbol"`
	Role          Role   `json:"role"`
}

// RouteWaypoint is a waypoint reference inside a nav route
type RouteWaypoint struct {
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type"`
	SystemSymbol string  `json:"systemSymbol"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// Route describes the current or last transit leg
type Route struct {
	Origin        RouteWaypoint `json:"origin"`
	Destination   RouteWaypoint `json:"destination"`
	DepartureTime string        `json:"departureTime"`
	Arrival       string        `json:"arrival"`
}

// Nav is the ship's navigation block
type Nav struct {
	SystemSymbol   string     `json:"systemSymbol"`
	WaypointSymbol string     `json:"waypointSymbol"`
	Route          *Route     `json:"route,omitempty"`
	Status         NavStatus  `json:"status"`
	FlightMode     FlightMode `json:"flightMode"`
}

// Engine is the ship's engine block
type Engine struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Speed  int    `json:"speed"`
}

// Fuel tracks current tank level against capacity
type Fuel struct {
	Current  int `json:"current"`
	Capacity int `json:"capacity"`
}

// IsFull reports whether the tank cannot take more fuel.
// Zero-capacity ships (probes without tanks) count as full.
func (f Fuel) IsFull() bool {
	return f.Capacity == 0 || f.Current >= f.Capacity
}

// CargoItem is one inventory line
type CargoItem struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       int    `json:"units"`
}

// Cargo is the ship's hold
type Cargo struct {
	Capacity  int         `json:"capacity"`
	Units     int         `json:"units"`
	Inventory []CargoItem `json:"inventory"`
}

// IsFull reports whether the hold has no free space
func (c Cargo) IsFull() bool {
	return c.Capacity > 0 && c.Units >= c.Capacity
}

// Symbols returns the distinct good symbols currently held
func (c Cargo) Symbols() []string {
	seen := make(map[string]bool, len(c.Inventory))
	var symbols []string
	for _, item := range c.Inventory {
		if item.Symbol != "" && !seen[item.Symbol] {
			seen[item.Symbol] = true
			symbols = append(symbols, item.Symbol)
		}
	}
	return symbols
}

// Cooldown is the post-action cooldown block
type Cooldown struct {
	ShipSymbol       string `json:"shipSymbol"`
	TotalSeconds     int    `json:"totalSeconds"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Expiration       string `json:"expiration,omitempty"`
}
