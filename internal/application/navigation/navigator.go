// Package navigation wraps the ship movement primitives: orbit/dock, transit
// with fuel fallback, extraction and arrival waits. Response payloads are
// applied to the cached ship so no follow-up reads are needed.
package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
	"github.com/mkarlen/starhelm/pkg/utils"
)

const (
	// preDeparturePoll bounds the wait for a navigate to take effect
	preDeparturePoll = 10 * time.Second
	// arrivalSleepMin and arrivalSleepMax clamp in-transit sleeps so the
	// loop stays interruptible
	arrivalSleepMin = 2 * time.Second
	arrivalSleepMax = 30 * time.Second
)

// Navigator executes movement operations for cached ships
type Navigator struct {
	client    *api.Client
	warehouse *warehouse.Warehouse
	clock     shared.Clock
}

// NewNavigator creates a navigator. A nil clock selects the real clock.
func NewNavigator(client *api.Client, wh *warehouse.Warehouse, clock shared.Clock) *Navigator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Navigator{client: client, warehouse: wh, clock: clock}
}

// EnsureOrbit moves a docked ship to orbit. In-transit ships are left alone.
func (n *Navigator) EnsureOrbit(ctx context.Context, ship *fleet.Ship) error {
	if ship.Nav.Status != fleet.NavStatusDocked {
		return nil
	}
	nav, err := n.client.OrbitShip(ctx, ship.Symbol)
	if err != nil {
		return err
	}
	ship.Nav = *nav
	return nil
}

// EnsureDocked docks an orbiting ship
func (n *Navigator) EnsureDocked(ctx context.Context, ship *fleet.Ship) error {
	if ship.Nav.Status == fleet.NavStatusDocked {
		return nil
	}
	nav, err := n.client.DockShip(ctx, ship.Symbol)
	if err != nil {
		return err
	}
	ship.Nav = *nav
	return nil
}

// SetFlightMode patches the flight mode when it differs from the cached one
func (n *Navigator) SetFlightMode(ctx context.Context, ship *fleet.Ship, mode fleet.FlightMode) error {
	if ship.Nav.FlightMode == mode {
		return nil
	}
	nav, err := n.client.SetFlightMode(ctx, ship.Symbol, mode)
	if err != nil {
		return err
	}
	ship.Nav = *nav
	return nil
}

// NavigateInSystem starts a transit to a waypoint in the ship's current
// system under the given flight mode, applying fuel and nav from the
// response. Returns the route arrival timestamp.
func (n *Navigator) NavigateInSystem(ctx context.Context, ship *fleet.Ship, waypointSymbol string, mode fleet.FlightMode) (string, error) {
	if err := n.EnsureOrbit(ctx, ship); err != nil {
		return "", err
	}
	if err := n.SetFlightMode(ctx, ship, mode); err != nil {
		return "", err
	}

	result, err := n.client.NavigateShip(ctx, ship.Symbol, waypointSymbol)
	if err != nil {
		return "", err
	}
	ship.Fuel = result.Fuel
	ship.Nav = result.Nav

	arrival := ""
	if result.Nav.Route != nil {
		arrival = result.Nav.Route.Arrival
	}
	logging.Infof("ship %s: %s to %s, arrival %s",
		ship.Symbol, mode, waypointSymbol, arrival)
	return arrival, nil
}

// NavigateWithFuelFallback tries a CRUISE transit and downgrades to DRIFT
// when the remote rejects it for fuel (error 4203)
func (n *Navigator) NavigateWithFuelFallback(ctx context.Context, ship *fleet.Ship, waypointSymbol string) (string, Outcome) {
	if err := ctx.Err(); err != nil {
		return "", Fatal(err)
	}

	arrival, err := n.NavigateInSystem(ctx, ship, waypointSymbol, fleet.FlightModeCruise)
	if err == nil {
		return arrival, OK()
	}
	if !api.IsCode(err, api.CodeInsufficientFuel) {
		return "", Retryable(err)
	}

	logging.Infof("ship %s: insufficient fuel for CRUISE to %s, trying DRIFT",
		ship.Symbol, waypointSymbol)
	arrival, err = n.NavigateInSystem(ctx, ship, waypointSymbol, fleet.FlightModeDrift)
	if err == nil {
		return arrival, OK()
	}
	if api.IsCode(err, api.CodeInsufficientFuel) {
		return "", InsufficientFuel(err)
	}
	return "", Retryable(err)
}

// WarpTo warps to a waypoint in another system, falling back to jump
func (n *Navigator) WarpTo(ctx context.Context, ship *fleet.Ship, systemSymbol string) error {
	if err := n.EnsureOrbit(ctx, ship); err != nil {
		return err
	}
	result, err := n.client.WarpShip(ctx, ship.Symbol, systemSymbol)
	if err == nil {
		ship.Fuel = result.Fuel
		ship.Nav = result.Nav
		return nil
	}

	logging.Warnf("ship %s: warp to %s failed (%v), trying jump", ship.Symbol, systemSymbol, err)
	jump, jumpErr := n.client.JumpShip(ctx, ship.Symbol, systemSymbol)
	if jumpErr != nil {
		return fmt.Errorf("warp and jump to %s both failed: %w", systemSymbol, jumpErr)
	}
	ship.Nav = jump.Nav
	ship.Cooldown = jump.Cooldown
	return nil
}

// Extract mines at the current waypoint, applying cooldown and cargo
func (n *Navigator) Extract(ctx context.Context, ship *fleet.Ship) (*api.ExtractResult, error) {
	if err := n.EnsureOrbit(ctx, ship); err != nil {
		return nil, err
	}
	result, err := n.client.Extract(ctx, ship.Symbol)
	if err != nil {
		return nil, err
	}
	ship.Cooldown = result.Cooldown
	ship.Cargo = result.Cargo
	logging.Infof("ship %s: extracted %d %s",
		ship.Symbol, result.Extraction.Yield.Units, result.Extraction.Yield.Symbol)
	return result, nil
}

// Jettison dumps a good overboard, applying the refreshed cargo
func (n *Navigator) Jettison(ctx context.Context, ship *fleet.Ship, goodSymbol string, units int) error {
	cargo, err := n.client.Jettison(ctx, ship.Symbol, goodSymbol, units)
	if err != nil {
		return err
	}
	ship.Cargo = *cargo
	logging.Infof("ship %s: jettisoned %d %s", ship.Symbol, units, goodSymbol)
	return nil
}

// Refuel fills the tank at the current waypoint, applying the refreshed fuel
// and updating cached credits from the response agent
func (n *Navigator) Refuel(ctx context.Context, ship *fleet.Ship) (*api.RefuelResult, error) {
	if err := n.EnsureDocked(ctx, ship); err != nil {
		return nil, err
	}
	result, err := n.client.RefuelShip(ctx, ship.Symbol, 0, false)
	if err != nil {
		return nil, err
	}
	ship.Fuel = result.Fuel
	if result.Agent != nil {
		n.warehouse.UpdateCredits(result.Agent.Credits)
	}
	return result, nil
}

// WaitUntilArrival blocks until an in-flight ship arrives. Phase one waits
// up to ten seconds for the transit to register; phase two sleeps toward the
// route ETA in bounded steps. A zero timeout waits indefinitely.
func (n *Navigator) WaitUntilArrival(ctx context.Context, ship *fleet.Ship, pollInterval, timeout time.Duration) error {
	if pollInterval < arrivalSleepMin {
		pollInterval = arrivalSleepMin
	}
	deadline := time.Time{}
	if timeout > 0 {
		deadline = n.clock.Now().Add(timeout)
	}

	// Phase one: wait for departure to register
	departureCutoff := n.clock.Now().Add(preDeparturePoll)
	for ship.Nav.Status != fleet.NavStatusInTransit {
		if ship.Nav.Route != nil && ship.Nav.Route.Destination.Symbol == ship.Nav.WaypointSymbol {
			// Instant hop; nothing to wait for
			return nil
		}
		if n.clock.Now().After(departureCutoff) {
			return nil
		}
		if err := n.pollShip(ctx, ship); err != nil {
			return err
		}
		if ship.Nav.Status == fleet.NavStatusInTransit {
			break
		}
		n.clock.Sleep(time.Second)
	}

	// Phase two: sleep toward the ETA
	for ship.Nav.Status == fleet.NavStatusInTransit {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !deadline.IsZero() && n.clock.Now().After(deadline) {
			return shared.NewArrivalTimeoutError(ship.Symbol)
		}

		sleep := pollInterval
		if ship.Nav.Route != nil && ship.Nav.Route.Arrival != "" {
			if eta, err := shared.ParseISO(ship.Nav.Route.Arrival); err == nil && !eta.IsZero() {
				sleep = eta.Sub(n.clock.Now()) - 500*time.Millisecond
			}
		}
		n.clock.Sleep(utils.ClampDuration(sleep, arrivalSleepMin, arrivalSleepMax))

		if err := n.pollShip(ctx, ship); err != nil {
			return err
		}
	}

	// Backfill the arrival waypoint's detail when it was never scanned
	if n.warehouse.WaypointDetail(ship.Nav.WaypointSymbol) == nil {
		detail, err := n.client.GetWaypoint(ctx, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol)
		if err != nil {
			logging.Warnf("ship %s: failed to fetch arrival waypoint %s: %v",
				ship.Symbol, ship.Nav.WaypointSymbol, err)
		} else {
			n.warehouse.UpsertWaypointDetail(detail)
		}
	}
	return nil
}

// pollShip refreshes the cached ship from the remote
func (n *Navigator) pollShip(ctx context.Context, ship *fleet.Ship) error {
	fresh, err := n.client.GetShip(ctx, ship.Symbol)
	if err != nil {
		return err
	}
	*ship = *fresh
	return nil
}
