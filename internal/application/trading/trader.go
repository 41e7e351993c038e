// Package trading covers the market side of the controller: fetching and
// recording market data, refueling, and the dock-and-sell-all flow.
package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/adapters/persistence"
	"github.com/mkarlen/starhelm/internal/application/navigation"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/market"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
)

// Trader executes market operations for cached ships
type Trader struct {
	client       *api.Client
	warehouse    *warehouse.Warehouse
	navigator    *navigation.Navigator
	tradeLog     *TradeLog
	transactions *persistence.TransactionRepository
	clock        shared.Clock
}

// NewTrader creates a trader. tradeLog and transactions may be nil in tests.
func NewTrader(client *api.Client, wh *warehouse.Warehouse, nav *navigation.Navigator,
	tradeLog *TradeLog, transactions *persistence.TransactionRepository, clock shared.Clock) *Trader {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Trader{
		client:       client,
		warehouse:    wh,
		navigator:    nav,
		tradeLog:     tradeLog,
		transactions: transactions,
		clock:        clock,
	}
}

// RecordMarket fetches market data for a waypoint, replaces the cached
// snapshot and appends one observation per good
func (t *Trader) RecordMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*market.Snapshot, error) {
	data, err := t.client.GetMarket(ctx, systemSymbol, waypointSymbol)
	if err != nil {
		return nil, err
	}

	now := shared.FormatISO(t.clock.Now())
	snapshot := &market.Snapshot{
		SystemSymbol:   systemSymbol,
		WaypointSymbol: waypointSymbol,
		SeenAt:         now,
		TradeGoods:     data.TradeGoods,
	}
	t.warehouse.UpsertMarketSnapshot(snapshot)

	for _, g := range data.TradeGoods {
		t.warehouse.RecordGoodObservation(ctx, market.GoodObservation{
			SystemSymbol:   systemSymbol,
			WaypointSymbol: waypointSymbol,
			Good:           g.Symbol,
			PurchasePrice:  g.PurchasePrice,
			SellPrice:      g.SellPrice,
			TradeVolume:    g.TradeVolume,
			Supply:         g.Supply,
			Activity:       g.Activity,
			SeenAt:         now,
		})
	}
	return snapshot, nil
}

// Refuel docks and fills the tank, recording the purchase
func (t *Trader) Refuel(ctx context.Context, ship *fleet.Ship) error {
	result, err := t.navigator.Refuel(ctx, ship)
	if err != nil {
		return err
	}

	creditsAfter := int64(0)
	if result.Agent != nil {
		creditsAfter = result.Agent.Credits
	}
	tx := result.Transaction
	t.recordTransaction(ctx, "BUY", ship.Symbol, tx.WaypointSymbol, tx.TradeSymbol,
		tx.Units, float64(tx.PricePerUnit), float64(tx.TotalPrice), creditsAfter, tx.Timestamp)
	logging.Infof("ship %s: refueled %d units for %d at %s",
		ship.Symbol, tx.Units, tx.TotalPrice, tx.WaypointSymbol)
	return nil
}

// DockAndSellAll sells every cargo item the local market buys, refuels when
// possible, and returns the ship to orbit. Items the market will not buy are
// skipped. Returns the total revenue.
func (t *Trader) DockAndSellAll(ctx context.Context, ship *fleet.Ship) (int, error) {
	if ship.Nav.Status == fleet.NavStatusInTransit {
		if err := t.navigator.WaitUntilArrival(ctx, ship, 0, 0); err != nil {
			return 0, err
		}
	}
	if err := t.navigator.EnsureDocked(ctx, ship); err != nil {
		return 0, err
	}

	snapshot, err := t.RecordMarket(ctx, ship.Nav.SystemSymbol, ship.Nav.WaypointSymbol)
	if err != nil {
		return 0, fmt.Errorf("failed to read market before selling: %w", err)
	}

	total := 0
	for _, item := range append([]fleet.CargoItem(nil), ship.Cargo.Inventory...) {
		good := snapshot.Good(item.Symbol)
		if good == nil || good.SellPrice <= 0 {
			logging.Debugf("ship %s: market %s does not buy %s, skipping",
				ship.Symbol, ship.Nav.WaypointSymbol, item.Symbol)
			continue
		}

		result, err := t.client.SellCargo(ctx, ship.Symbol, item.Symbol, item.Units)
		if err != nil {
			if classifySellError(err).Kind != navigation.OutcomeNotSold {
				return total, err
			}
			logging.Warnf("ship %s: market %s declined %s: %v",
				ship.Symbol, ship.Nav.WaypointSymbol, item.Symbol, err)
			continue
		}
		ship.Cargo = result.Cargo

		creditsAfter := int64(0)
		if result.Agent != nil {
			creditsAfter = result.Agent.Credits
			t.warehouse.UpdateCredits(creditsAfter)
		}
		tx := result.Transaction
		total += tx.TotalPrice
		t.recordTransaction(ctx, "SELL", ship.Symbol, tx.WaypointSymbol, tx.TradeSymbol,
			tx.Units, float64(tx.PricePerUnit), float64(tx.TotalPrice), creditsAfter, tx.Timestamp)
		logging.Infof("ship %s: sold %d %s for %d at %s",
			ship.Symbol, tx.Units, tx.TradeSymbol, tx.TotalPrice, tx.WaypointSymbol)
	}

	if !ship.Fuel.IsFull() && snapshot.SellsFuel() {
		if err := t.Refuel(ctx, ship); err != nil {
			logging.Warnf("ship %s: post-sale refuel failed: %v", ship.Symbol, err)
		}
	}

	if err := t.navigator.EnsureOrbit(ctx, ship); err != nil {
		return total, err
	}

	if agent := t.warehouse.Agent(); agent != nil && t.tradeLog != nil {
		t.tradeLog.LogCredits(shared.FormatISO(t.clock.Now()), agent.Credits)
	}
	return total, nil
}

// classifySellError separates a market declining a good from a transport
// failure. Declines are skipped per item; transport failures end the flow.
func classifySellError(err error) navigation.Outcome {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return navigation.NotSold(err)
	}
	return navigation.Retryable(err)
}

// JettisonUnworthy dumps cargo items with no known buyer anywhere or whose
// best known sell price is at or below the floor
func (t *Trader) JettisonUnworthy(ctx context.Context, ship *fleet.Ship) {
	for _, item := range append([]fleet.CargoItem(nil), ship.Cargo.Inventory...) {
		best := t.warehouse.BestSellObservation(item.Symbol)
		if best != nil && best.SellPrice > market.MinSellPrice {
			continue
		}
		if err := t.navigator.Jettison(ctx, ship, item.Symbol, item.Units); err != nil {
			logging.Warnf("ship %s: failed to jettison %s: %v", ship.Symbol, item.Symbol, err)
		}
	}
}

// recordTransaction writes one transaction to the operator log and the store
func (t *Trader) recordTransaction(ctx context.Context, action, ship, waypoint, good string,
	units int, unitPrice, totalPrice float64, creditsAfter int64, ts string) {
	if ts == "" {
		ts = shared.FormatISO(t.clock.Now())
	}
	if t.tradeLog != nil {
		if err := t.tradeLog.LogTrade(ts, action, ship, waypoint, good, units, unitPrice, totalPrice); err != nil {
			logging.Warnf("failed to write trade log: %v", err)
		}
	}
	if t.transactions != nil {
		err := t.transactions.Insert(ctx, &persistence.TransactionRecord{
			Ts:           ts,
			Ship:         ship,
			Waypoint:     waypoint,
			Action:       action,
			Symbol:       good,
			Units:        units,
			UnitPrice:    unitPrice,
			TotalPrice:   totalPrice,
			CreditsAfter: creditsAfter,
		})
		if err != nil {
			logging.Warnf("failed to persist transaction: %v", err)
		}
	}
}
