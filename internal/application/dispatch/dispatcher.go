package dispatch

import (
	"github.com/mkarlen/starhelm/internal/application/navigation"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/market"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
)

// Dispatcher is the pure policy core. Decide reads warehouse and runtime
// state and returns one action; the only state it writes is the runtime's
// target-market claim and selling flag, which parameterize the executor.
type Dispatcher struct {
	warehouse *warehouse.Warehouse
	clock     shared.Clock
}

// NewDispatcher creates a dispatcher. A nil clock selects the real clock.
func NewDispatcher(wh *warehouse.Warehouse, clock shared.Clock) *Dispatcher {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Dispatcher{warehouse: wh, clock: clock}
}

// ShipReadiness returns the earliest instant the ship is worth waking, as a
// queue priority string. Explicit wakeups win; otherwise the later of route
// arrival and cooldown expiration, floored at now.
func (d *Dispatcher) ShipReadiness(shipSymbol string) string {
	now := d.clock.Now()
	ship := d.warehouse.Ship(shipSymbol)
	rt := d.warehouse.Runtime(shipSymbol)

	if rt != nil && rt.NextWakeup != "" {
		wakeup := shared.ParseISOOr(rt.NextWakeup, now)
		return shared.FormatISO(shared.MaxTime(wakeup, now))
	}

	ready := now
	if ship != nil {
		if ship.Nav.Route != nil {
			arrival := shared.ParseISOOr(ship.Nav.Route.Arrival, now)
			ready = shared.MaxTime(ready, arrival)
		}
		expiration := shared.ParseISOOr(ship.Cooldown.Expiration, now)
		ready = shared.MaxTime(ready, expiration)
	}
	return shared.FormatISO(ready)
}

// Decide returns the next action for a ship. Malformed or unknown state
// yields NOOP; the dispatcher never fails.
func (d *Dispatcher) Decide(shipSymbol string) ShipAction {
	ship := d.warehouse.Ship(shipSymbol)
	rt := d.warehouse.Runtime(shipSymbol)
	if ship == nil || rt == nil {
		return ActionNoop
	}

	switch rt.State {
	case fleet.StateIdle:
		return d.decideIdle(ship, rt)
	case fleet.StateNavigating:
		return d.decideNavigating(ship, rt)
	case fleet.StateMining:
		if !ship.Cargo.IsFull() {
			return ActionExtract
		}
		return ActionNoop
	}
	return ActionNoop
}

func (d *Dispatcher) decideIdle(ship *fleet.Ship, rt *fleet.Runtime) ShipAction {
	if d.shouldRefuel(ship) {
		return ActionRefuel
	}

	if ship.Registration.Role.IsProbe() {
		if target := d.pickProbeMarket(ship); target != "" {
			rt.TargetMarket = target
			return ActionProbeMarket
		}
		return ActionNoop
	}

	if ship.Registration.Role == fleet.RoleExcavator {
		return d.decideExcavator(ship, rt)
	}
	return ActionNoop
}

// shouldRefuel checks the cached snapshot at the ship's waypoint for fuel
// on sale
func (d *Dispatcher) shouldRefuel(ship *fleet.Ship) bool {
	if ship.Fuel.IsFull() || ship.Nav.Status == fleet.NavStatusInTransit {
		return false
	}
	snapshot := d.warehouse.MarketSnapshot(ship.Nav.WaypointSymbol)
	return snapshot != nil && snapshot.SellsFuel()
}

// pickProbeMarket chooses the probe's next market: nearest unvisited, else
// oldest-seen, else nearest. Markets claimed by other runtimes are excluded.
func (d *Dispatcher) pickProbeMarket(ship *fleet.Ship) string {
	claimed := d.warehouse.ClaimedTargetMarkets(ship.Symbol)
	candidates := navigation.MarketplaceCandidates(
		d.warehouse, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol, claimed)
	if len(candidates) == 0 {
		return ""
	}

	for _, c := range candidates {
		if d.warehouse.MarketSnapshot(c.Symbol) == nil {
			logging.Debugf("probe %s: unvisited market %s", ship.Symbol, c.Symbol)
			return c.Symbol
		}
	}

	oldest := ""
	oldestSeen := ""
	for _, c := range candidates {
		snapshot := d.warehouse.MarketSnapshot(c.Symbol)
		if snapshot == nil {
			continue
		}
		if oldest == "" || snapshot.SeenAt < oldestSeen {
			oldest = c.Symbol
			oldestSeen = snapshot.SeenAt
		}
	}
	if oldest != "" {
		logging.Debugf("probe %s: oldest-seen market %s (%s)", ship.Symbol, oldest, oldestSeen)
		return oldest
	}
	return candidates[0].Symbol
}

func (d *Dispatcher) decideExcavator(ship *fleet.Ship, rt *fleet.Runtime) ShipAction {
	if rt.Selling && ship.Cargo.Units > 0 {
		if target := d.pickBuyerMarket(ship); target != "" {
			rt.TargetMarket = target
			return ActionProbeMarket
		}
		// Nothing buys the leftovers; the mine flow jettisons them
		return ActionNavigateToMine
	}

	if !ship.Cargo.IsFull() {
		return ActionNavigateToMine
	}

	if target := d.pickBuyerMarket(ship); target != "" {
		rt.Selling = true
		rt.TargetMarket = target
		return ActionProbeMarket
	}
	return ActionNavigateToMine
}

// pickBuyerMarket finds the nearest cached marketplace that buys at least
// one of the ship's cargo goods above the price floor
func (d *Dispatcher) pickBuyerMarket(ship *fleet.Ship) string {
	symbols := ship.Cargo.Symbols()
	if len(symbols) == 0 {
		return ""
	}
	candidates := navigation.MarketplaceCandidates(
		d.warehouse, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol, nil)
	for _, c := range candidates {
		snapshot := d.warehouse.MarketSnapshot(c.Symbol)
		if snapshot != nil && snapshot.BuysAny(symbols, market.MinSellPrice) {
			return c.Symbol
		}
	}
	// Candidate ranking only covers waypoints with a cached detail;
	// hydration rebuilds snapshots without details, so the local market
	// can still be the buyer
	if snapshot := d.warehouse.MarketSnapshot(ship.Nav.WaypointSymbol); snapshot != nil {
		if snapshot.BuysAny(symbols, market.MinSellPrice) {
			return ship.Nav.WaypointSymbol
		}
	}
	return ""
}

func (d *Dispatcher) decideNavigating(ship *fleet.Ship, rt *fleet.Runtime) ShipAction {
	if ship.Nav.Status == fleet.NavStatusInTransit {
		// The cached nav is stale once the scheduler wakes the ship at
		// its ETA; the executor refreshes it and waits out any remainder
		return ActionAwaitArrival
	}

	switch rt.Destination {
	case fleet.DestinationMine:
		if rt.MineTarget == ship.Nav.WaypointSymbol {
			detail := d.warehouse.WaypointDetail(ship.Nav.WaypointSymbol)
			if detail != nil && detail.IsMineable() {
				return ActionExtract
			}
		}
		// Landed somewhere that cannot be mined; restart the mine leg
		return ActionNavigateToMine
	case fleet.DestinationMarket:
		return ActionProbeMarket
	case fleet.DestinationRefuel:
		return ActionRefuel
	}
	return ActionNoop
}
