package fleet

// State is a ship's controller-side lifecycle state. It is orthogonal to the
// API nav status: a ship can be IN_TRANSIT while the runtime says NAVIGATING,
// and becomes actionable again when the scheduler wakes it.
type State string

const (
	StateIdle       State = "IDLE"
	StateNavigating State = "NAVIGATING"
	StateMining     State = "MINING"
)

// Destination tags why a ship is underway, so the dispatcher can decide what
// to do on arrival.
type Destination string

const (
	DestinationNone   Destination = ""
	DestinationMine   Destination = "MINE"
	DestinationRefuel Destination = "REFUEL"
	DestinationMarket Destination = "PROBE_MARKET"
)

// Runtime is the per-ship controller state. It never comes from the API; the
// dispatcher writes targets into it and the executor advances the state and
// next wakeup after each action.
type Runtime struct {
	State      State
	NextWakeup string // ISO-8601 UTC ms; empty means derive from nav/cooldown

	Destination  Destination
	MineTarget   string
	TargetMarket string
	Selling      bool
}

// NewRuntime returns an idle runtime
func NewRuntime() *Runtime {
	return &Runtime{State: StateIdle}
}

// BeginNavigation records a transit toward dest with the given tag
func (r *Runtime) BeginNavigation(tag Destination) {
	r.State = StateNavigating
	r.Destination = tag
}

// SettleIdle returns the ship to IDLE after an action completes.
// Target market survives only while a sell run continues.
func (r *Runtime) SettleIdle() {
	r.State = StateIdle
	r.Destination = DestinationNone
	if !r.Selling {
		r.TargetMarket = ""
	}
}

// StopSelling ends a sell run and releases the claimed market
func (r *Runtime) StopSelling() {
	r.Selling = false
	r.TargetMarket = ""
}
