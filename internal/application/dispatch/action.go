package dispatch

// ShipAction is what the dispatcher tells the executor to do with a ship
type ShipAction string

const (
	ActionNoop           ShipAction = "NOOP"
	ActionRefuel         ShipAction = "REFUEL"
	ActionNavigateToMine ShipAction = "NAVIGATE_TO_MINE"
	ActionExtract        ShipAction = "EXTRACT_MINERALS"
	ActionProbeMarket    ShipAction = "PROBE_VISIT_MARKET"
	ActionAwaitArrival   ShipAction = "AWAIT_ARRIVAL"
)
