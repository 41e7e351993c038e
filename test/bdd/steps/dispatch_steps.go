package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/mkarlen/starhelm/internal/application/dispatch"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/market"
	"github.com/mkarlen/starhelm/internal/domain/system"
)

type dispatchContext struct {
	warehouse    *warehouse.Warehouse
	dispatcher   *dispatch.Dispatcher
	systemSymbol string
	snapshots    map[string]*market.Snapshot
	action       dispatch.ShipAction
}

func (dc *dispatchContext) reset() {
	dc.warehouse = warehouse.New(nil, nil)
	dc.dispatcher = dispatch.NewDispatcher(dc.warehouse, nil)
	dc.systemSymbol = ""
	dc.snapshots = make(map[string]*market.Snapshot)
	dc.action = dispatch.ActionNoop
}

// cellByColumn looks a cell up by header name so feature tables can reorder
// or omit columns
func cellByColumn(table *godog.Table, row *messages.PickleTableRow, column string) string {
	for i, header := range table.Rows[0].Cells {
		if header.Value == column && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

// World setup steps

func (dc *dispatchContext) aSystemWithWaypoints(systemSymbol string, table *godog.Table) error {
	dc.systemSymbol = systemSymbol

	sys := &system.System{Symbol: systemSymbol}
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		x, err := strconv.ParseFloat(cellByColumn(table, row, "x"), 64)
		if err != nil {
			return fmt.Errorf("bad x in row %d: %w", i, err)
		}
		y, err := strconv.ParseFloat(cellByColumn(table, row, "y"), 64)
		if err != nil {
			return fmt.Errorf("bad y in row %d: %w", i, err)
		}
		symbol := cellByColumn(table, row, "symbol")
		sys.Waypoints = append(sys.Waypoints, system.WaypointRef{
			Symbol: symbol,
			Type:   cellByColumn(table, row, "type"),
			X:      x,
			Y:      y,
		})

		if trait := cellByColumn(table, row, "trait"); trait != "" {
			dc.warehouse.UpsertWaypointDetail(&system.WaypointDetail{
				Symbol:       symbol,
				SystemSymbol: systemSymbol,
				Traits:       []system.Trait{{Symbol: trait}},
			})
		}
	}
	dc.warehouse.UpsertSystem(sys)
	return nil
}

func (dc *dispatchContext) aProbeShipAt(shipSymbol, waypointSymbol string) error {
	dc.warehouse.UpsertShip(&fleet.Ship{
		Symbol:       shipSymbol,
		Registration: fleet.Registration{Role: fleet.RoleSatellite},
		Nav: fleet.Nav{
			SystemSymbol:   dc.systemSymbol,
			WaypointSymbol: waypointSymbol,
			Status:         fleet.NavStatusInOrbit,
		},
	})
	return nil
}

func (dc *dispatchContext) anExcavatorShipAtCarrying(shipSymbol, waypointSymbol string, units, capacity int, goodSymbol string) error {
	ship := &fleet.Ship{
		Symbol:       shipSymbol,
		Registration: fleet.Registration{Role: fleet.RoleExcavator},
		Nav: fleet.Nav{
			SystemSymbol:   dc.systemSymbol,
			WaypointSymbol: waypointSymbol,
			Status:         fleet.NavStatusInOrbit,
		},
		Fuel:  fleet.Fuel{Current: 100, Capacity: 100},
		Cargo: fleet.Cargo{Capacity: capacity, Units: units},
	}
	if units > 0 {
		ship.Cargo.Inventory = []fleet.CargoItem{{Symbol: goodSymbol, Units: units}}
	}
	dc.warehouse.UpsertShip(ship)
	return nil
}

func (dc *dispatchContext) shipHasFuel(shipSymbol string, current, capacity int) error {
	ship := dc.warehouse.Ship(shipSymbol)
	if ship == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	ship.Fuel = fleet.Fuel{Current: current, Capacity: capacity}
	return nil
}

func (dc *dispatchContext) shipHasArrivedAtTargetMarket(shipSymbol, waypointSymbol string) error {
	ship := dc.warehouse.Ship(shipSymbol)
	rt := dc.warehouse.Runtime(shipSymbol)
	if ship == nil || rt == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	ship.Nav.WaypointSymbol = waypointSymbol
	ship.Nav.Status = fleet.NavStatusInOrbit
	rt.BeginNavigation(fleet.DestinationMarket)
	rt.TargetMarket = waypointSymbol
	return nil
}

func (dc *dispatchContext) shipIsStillMidTransit(shipSymbol string) error {
	ship := dc.warehouse.Ship(shipSymbol)
	rt := dc.warehouse.Runtime(shipSymbol)
	if ship == nil || rt == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	ship.Nav.Status = fleet.NavStatusInTransit
	rt.BeginNavigation(fleet.DestinationMarket)
	return nil
}

func (dc *dispatchContext) shipAlreadyTargetsMarket(shipSymbol, waypointSymbol string) error {
	rt := dc.warehouse.Runtime(shipSymbol)
	if rt == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	rt.TargetMarket = waypointSymbol
	return nil
}

// Market snapshot steps. Multiple steps may touch the same waypoint, so the
// snapshot is accumulated locally and re-upserted after each change.

func (dc *dispatchContext) snapshotAt(waypointSymbol string) *market.Snapshot {
	snapshot, ok := dc.snapshots[waypointSymbol]
	if !ok {
		snapshot = &market.Snapshot{
			SystemSymbol:   dc.systemSymbol,
			WaypointSymbol: waypointSymbol,
		}
		dc.snapshots[waypointSymbol] = snapshot
	}
	return snapshot
}

func (dc *dispatchContext) marketWasLastSeenAt(waypointSymbol, seenAt string) error {
	snapshot := dc.snapshotAt(waypointSymbol)
	snapshot.SeenAt = seenAt
	dc.warehouse.UpsertMarketSnapshot(snapshot)
	return nil
}

func (dc *dispatchContext) marketBuysAt(waypointSymbol, goodSymbol string, sellPrice int) error {
	snapshot := dc.snapshotAt(waypointSymbol)
	snapshot.TradeGoods = append(snapshot.TradeGoods, market.TradeGood{
		Symbol:    goodSymbol,
		SellPrice: sellPrice,
	})
	dc.warehouse.UpsertMarketSnapshot(snapshot)
	return nil
}

func (dc *dispatchContext) marketSellsAt(waypointSymbol, goodSymbol string, purchasePrice int) error {
	snapshot := dc.snapshotAt(waypointSymbol)
	snapshot.TradeGoods = append(snapshot.TradeGoods, market.TradeGood{
		Symbol:        goodSymbol,
		PurchasePrice: purchasePrice,
	})
	dc.warehouse.UpsertMarketSnapshot(snapshot)
	return nil
}

// Decision steps

func (dc *dispatchContext) theDispatcherDecidesFor(shipSymbol string) error {
	dc.action = dc.dispatcher.Decide(shipSymbol)
	return nil
}

func (dc *dispatchContext) theActionShouldBe(expected string) error {
	if string(dc.action) != expected {
		return fmt.Errorf("expected action %s, got %s", expected, dc.action)
	}
	return nil
}

func (dc *dispatchContext) shipShouldTargetMarket(shipSymbol, waypointSymbol string) error {
	rt := dc.warehouse.Runtime(shipSymbol)
	if rt == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	if rt.TargetMarket != waypointSymbol {
		return fmt.Errorf("expected target market %s, got %q", waypointSymbol, rt.TargetMarket)
	}
	return nil
}

func (dc *dispatchContext) shipShouldBeSelling(shipSymbol string) error {
	rt := dc.warehouse.Runtime(shipSymbol)
	if rt == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	if !rt.Selling {
		return fmt.Errorf("expected ship %s to be selling", shipSymbol)
	}
	return nil
}

func (dc *dispatchContext) shipShouldNotBeSelling(shipSymbol string) error {
	rt := dc.warehouse.Runtime(shipSymbol)
	if rt == nil {
		return fmt.Errorf("unknown ship %s", shipSymbol)
	}
	if rt.Selling {
		return fmt.Errorf("expected ship %s not to be selling", shipSymbol)
	}
	return nil
}

// InitializeDispatchScenario registers the fleet dispatch step definitions
func InitializeDispatchScenario(sc *godog.ScenarioContext) {
	dc := &dispatchContext{}
	dc.reset()

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		dc.reset()
		return ctx, nil
	})

	sc.Step(`^a system "([^"]*)" with waypoints:$`, dc.aSystemWithWaypoints)
	sc.Step(`^a probe ship "([^"]*)" at "([^"]*)"$`, dc.aProbeShipAt)
	sc.Step(`^an excavator ship "([^"]*)" at "([^"]*)" carrying (\d+) of (\d+) units of "([^"]*)"$`, dc.anExcavatorShipAtCarrying)
	sc.Step(`^ship "([^"]*)" has (\d+) of (\d+) fuel$`, dc.shipHasFuel)
	sc.Step(`^ship "([^"]*)" already targets market "([^"]*)"$`, dc.shipAlreadyTargetsMarket)
	sc.Step(`^ship "([^"]*)" has arrived at its target market "([^"]*)"$`, dc.shipHasArrivedAtTargetMarket)
	sc.Step(`^ship "([^"]*)" is still mid-transit$`, dc.shipIsStillMidTransit)
	sc.Step(`^the market at "([^"]*)" was last seen at "([^"]*)"$`, dc.marketWasLastSeenAt)
	sc.Step(`^the market at "([^"]*)" buys "([^"]*)" at (\d+)$`, dc.marketBuysAt)
	sc.Step(`^the market at "([^"]*)" sells "([^"]*)" at (\d+)$`, dc.marketSellsAt)
	sc.Step(`^the dispatcher decides for "([^"]*)"$`, dc.theDispatcherDecidesFor)
	sc.Step(`^the action should be "([^"]*)"$`, dc.theActionShouldBe)
	sc.Step(`^ship "([^"]*)" should target market "([^"]*)"$`, dc.shipShouldTargetMarket)
	sc.Step(`^ship "([^"]*)" should be selling$`, dc.shipShouldBeSelling)
	sc.Step(`^ship "([^"]*)" should not be selling$`, dc.shipShouldNotBeSelling)
}
