package dispatch

import (
	"context"
	"time"

	"github.com/mkarlen/starhelm/internal/application/navigation"
	"github.com/mkarlen/starhelm/internal/application/trading"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
	"github.com/mkarlen/starhelm/pkg/utils"
)

const (
	// failedActionBackoff delays a ship whose action could not proceed
	failedActionBackoff = 30 * time.Second
	// arrivalFallback covers routes with no usable arrival timestamp
	arrivalFallback = 10 * time.Second
	// cooldownFallback covers extract responses with no usable cooldown
	cooldownFallback = 5 * time.Second
	// awaitArrivalTimeout bounds one wait for a stale transit to land
	awaitArrivalTimeout = 2 * time.Minute
)

// Executor carries out dispatcher actions against the remote API, applying
// response payloads to the cached ship instead of refetching.
type Executor struct {
	warehouse *warehouse.Warehouse
	navigator *navigation.Navigator
	trader    *trading.Trader
	clock     shared.Clock
}

// NewExecutor creates an executor. A nil clock selects the real clock.
func NewExecutor(wh *warehouse.Warehouse, nav *navigation.Navigator, trader *trading.Trader, clock shared.Clock) *Executor {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Executor{warehouse: wh, navigator: nav, trader: trader, clock: clock}
}

// Execute performs one action for one ship. Failures are returned to the
// scheduler, which logs and re-enqueues with a backoff.
func (e *Executor) Execute(ctx context.Context, shipSymbol string, action ShipAction) error {
	ship := e.warehouse.Ship(shipSymbol)
	rt := e.warehouse.Runtime(shipSymbol)
	if ship == nil || rt == nil {
		return shared.NewShipError(shipSymbol, "unknown ship")
	}

	logging.Infof("ship %s: executing %s at %s", shipSymbol, action, ship.Nav.WaypointSymbol)

	switch action {
	case ActionRefuel:
		return e.executeRefuel(ctx, ship, rt)
	case ActionNavigateToMine:
		return e.executeNavigateToMine(ctx, ship, rt)
	case ActionExtract:
		return e.executeExtract(ctx, ship, rt)
	case ActionProbeMarket:
		return e.executeProbeMarket(ctx, ship, rt)
	case ActionAwaitArrival:
		return e.executeAwaitArrival(ctx, ship, rt)
	}
	return nil
}

// executeAwaitArrival refreshes a ship whose cached transit reached its ETA
// and waits out any remainder. The next tick runs the arrival branch for the
// runtime's destination.
func (e *Executor) executeAwaitArrival(ctx context.Context, ship *fleet.Ship, rt *fleet.Runtime) error {
	if err := e.navigator.WaitUntilArrival(ctx, ship, 0, awaitArrivalTimeout); err != nil {
		e.backoff(rt)
		return err
	}
	rt.NextWakeup = ""
	return nil
}

func (e *Executor) executeRefuel(ctx context.Context, ship *fleet.Ship, rt *fleet.Runtime) error {
	if err := e.trader.Refuel(ctx, ship); err != nil {
		e.backoff(rt)
		return err
	}
	rt.SettleIdle()
	rt.NextWakeup = ""
	return nil
}

func (e *Executor) executeNavigateToMine(ctx context.Context, ship *fleet.Ship, rt *fleet.Runtime) error {
	if e.warehouse.WaypointRef(ship.Nav.WaypointSymbol) == nil {
		e.backoff(rt)
		return shared.NewUnknownWaypointError(ship.Nav.WaypointSymbol)
	}

	// Leftovers nobody buys go overboard before the next mining run
	if ship.Cargo.Units > 0 && !ship.Cargo.IsFull() {
		e.trader.JettisonUnworthy(ctx, ship)
	}
	if rt.Selling && ship.Cargo.Units == 0 {
		rt.StopSelling()
	}

	// Already sitting on a deposit: let the next tick extract
	if detail := e.warehouse.WaypointDetail(ship.Nav.WaypointSymbol); detail != nil && detail.IsMineable() {
		rt.BeginNavigation(fleet.DestinationMine)
		rt.MineTarget = ship.Nav.WaypointSymbol
		rt.NextWakeup = ""
		return nil
	}

	candidates := navigation.RankedMineableWaypoints(
		e.warehouse, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol)
	if len(candidates) == 0 {
		logging.Warnf("ship %s: no mineable waypoints known in %s", ship.Symbol, ship.Nav.SystemSymbol)
		e.backoff(rt)
		return nil
	}

	// First candidate the current tank can reach at CRUISE
	target := ""
	for _, c := range candidates {
		if utils.CeilInt(c.Distance) <= ship.Fuel.Current {
			target = c.Symbol
			break
		}
	}
	if target != "" {
		arrival, err := e.navigator.NavigateInSystem(ctx, ship, target, fleet.FlightModeCruise)
		if err == nil {
			e.settleNavigation(ship, rt, fleet.DestinationMine, target, arrival)
			return nil
		}
		logging.Warnf("ship %s: cruise to %s failed: %v", ship.Symbol, target, err)
	}

	// Drift reaches anywhere on fumes; aim at the closest deposit
	closest := candidates[0].Symbol
	arrival, err := e.navigator.NavigateInSystem(ctx, ship, closest, fleet.FlightModeDrift)
	if err == nil {
		e.settleNavigation(ship, rt, fleet.DestinationMine, closest, arrival)
		return nil
	}
	logging.Warnf("ship %s: drift to %s failed: %v", ship.Symbol, closest, err)

	// Last resort: head somewhere fuel is sold
	refuel := navigation.ClosestRefuelWaypoint(e.warehouse, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol)
	if refuel.Symbol != "" && refuel.Symbol != ship.Nav.WaypointSymbol {
		arrival, outcome := e.navigator.NavigateWithFuelFallback(ctx, ship, refuel.Symbol)
		if outcome.Success() {
			e.settleNavigation(ship, rt, fleet.DestinationRefuel, "", arrival)
			return nil
		}
		if outcome.Kind == navigation.OutcomeFatal {
			return outcome.Err
		}
		logging.Warnf("ship %s: refuel detour to %s failed: %v", ship.Symbol, refuel.Symbol, outcome.Err)
	}

	e.backoff(rt)
	return nil
}

func (e *Executor) executeExtract(ctx context.Context, ship *fleet.Ship, rt *fleet.Runtime) error {
	result, err := e.navigator.Extract(ctx, ship)
	if err != nil {
		e.backoff(rt)
		return err
	}

	if ship.Cargo.IsFull() {
		// Next idle pass routes the hold to a buyer
		rt.SettleIdle()
	} else {
		rt.State = fleet.StateMining
	}

	switch {
	case result.Cooldown.Expiration != "":
		rt.NextWakeup = result.Cooldown.Expiration
	case result.Cooldown.RemainingSeconds > 0:
		rt.NextWakeup = shared.FormatISO(
			e.clock.Now().Add(time.Duration(result.Cooldown.RemainingSeconds) * time.Second))
	default:
		rt.NextWakeup = shared.FormatISO(e.clock.Now().Add(cooldownFallback))
	}
	return nil
}

func (e *Executor) executeProbeMarket(ctx context.Context, ship *fleet.Ship, rt *fleet.Runtime) error {
	target := rt.TargetMarket
	if target == "" {
		rt.SettleIdle()
		return nil
	}

	if ship.Nav.WaypointSymbol == target && ship.Nav.Status != fleet.NavStatusInTransit {
		return e.visitMarket(ctx, ship, rt)
	}

	targetSystem := shared.SystemSymbolOf(target)
	if targetSystem != ship.Nav.SystemSymbol {
		if err := e.navigator.WarpTo(ctx, ship, targetSystem); err != nil {
			e.backoff(rt)
			return err
		}
		arrival := ""
		if ship.Nav.Route != nil {
			arrival = ship.Nav.Route.Arrival
		}
		e.settleNavigation(ship, rt, fleet.DestinationMarket, "", arrival)
		return nil
	}

	arrival, outcome := e.navigator.NavigateWithFuelFallback(ctx, ship, target)
	if !outcome.Success() {
		if outcome.Kind == navigation.OutcomeFatal {
			return outcome.Err
		}
		logging.Warnf("ship %s: could not reach market %s: %v", ship.Symbol, target, outcome.Err)
		e.backoff(rt)
		return nil
	}
	e.settleNavigation(ship, rt, fleet.DestinationMarket, "", arrival)
	return nil
}

// visitMarket records the market at the ship's waypoint and runs the sell
// flow for selling excavators
func (e *Executor) visitMarket(ctx context.Context, ship *fleet.Ship, rt *fleet.Runtime) error {
	if _, err := e.trader.RecordMarket(ctx, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol); err != nil {
		e.backoff(rt)
		return err
	}

	if ship.Registration.Role == fleet.RoleExcavator && rt.Selling {
		if _, err := e.trader.DockAndSellAll(ctx, ship); err != nil {
			e.backoff(rt)
			return err
		}
		if ship.Cargo.Units == 0 {
			rt.StopSelling()
		}
	}

	rt.SettleIdle()
	rt.NextWakeup = ""
	return nil
}

// settleNavigation records a started transit and its wakeup
func (e *Executor) settleNavigation(ship *fleet.Ship, rt *fleet.Runtime, tag fleet.Destination, mineTarget, arrival string) {
	rt.BeginNavigation(tag)
	rt.MineTarget = mineTarget
	if arrival != "" {
		rt.NextWakeup = arrival
	} else {
		rt.NextWakeup = shared.FormatISO(e.clock.Now().Add(arrivalFallback))
	}
}

// backoff schedules the ship's next attempt after a failed action
func (e *Executor) backoff(rt *fleet.Runtime) {
	rt.NextWakeup = shared.FormatISO(e.clock.Now().Add(failedActionBackoff))
}
