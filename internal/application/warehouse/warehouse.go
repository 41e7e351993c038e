// Package warehouse is the in-memory cache of everything the controller
// knows: agent, systems, waypoints, ships, per-ship runtimes, market
// snapshots and price observations. The executor mutates it through the
// methods here; the dispatcher reads it.
package warehouse

import (
	"context"
	"sync"

	"github.com/mkarlen/starhelm/internal/adapters/persistence"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/market"
	"github.com/mkarlen/starhelm/internal/domain/player"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/domain/system"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
)

// Warehouse owns the cached world state. One ship is advanced at a time, so
// the mutex is belt-and-braces for CLI readers sharing the process.
type Warehouse struct {
	mu sync.Mutex

	agent     *player.Agent
	systems   map[string]*system.System
	waypoints map[string]*system.WaypointDetail // by waypoint symbol
	ships     map[string]*fleet.Ship
	runtimes  map[string]*fleet.Runtime

	snapshots    map[string]*market.Snapshot         // latest per waypoint
	observations map[string][]market.GoodObservation // append-only per good

	observationRepo *persistence.ObservationRepository
	clock           shared.Clock
}

// New creates an empty warehouse. The observation repository may be nil in
// tests that do not touch persistence.
func New(observationRepo *persistence.ObservationRepository, clock shared.Clock) *Warehouse {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Warehouse{
		systems:         make(map[string]*system.System),
		waypoints:       make(map[string]*system.WaypointDetail),
		ships:           make(map[string]*fleet.Ship),
		runtimes:        make(map[string]*fleet.Runtime),
		snapshots:       make(map[string]*market.Snapshot),
		observations:    make(map[string][]market.GoodObservation),
		observationRepo: observationRepo,
		clock:           clock,
	}
}

// LoadAgent stores the authenticated agent
func (w *Warehouse) LoadAgent(agent *player.Agent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.agent = agent
}

// Agent returns the cached agent, or nil before LoadAgent
func (w *Warehouse) Agent() *player.Agent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agent
}

// UpdateCredits applies a credits figure from a transaction response
func (w *Warehouse) UpdateCredits(credits int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.agent != nil {
		w.agent.Credits = credits
	}
}

// UpsertSystem stores or replaces a system and its waypoint refs
func (w *Warehouse) UpsertSystem(s *system.System) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.systems[s.Symbol] = s
}

// UpsertSystems stores a batch of systems
func (w *Warehouse) UpsertSystems(systems []system.System) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range systems {
		w.systems[systems[i].Symbol] = &systems[i]
	}
}

// System returns a cached system, or nil
func (w *Warehouse) System(symbol string) *system.System {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.systems[symbol]
}

// UpsertWaypointDetail stores a waypoint detail and refreshes the matching
// ref inside the parent system so coordinate queries agree.
func (w *Warehouse) UpsertWaypointDetail(detail *system.WaypointDetail) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waypoints[detail.Symbol] = detail

	parent := w.systems[detail.SystemSymbol]
	if parent == nil {
		parent = &system.System{Symbol: detail.SystemSymbol}
		w.systems[detail.SystemSymbol] = parent
	}
	for i := range parent.Waypoints {
		if parent.Waypoints[i].Symbol == detail.Symbol {
			parent.Waypoints[i].Type = detail.Type
			parent.Waypoints[i].X = detail.X
			parent.Waypoints[i].Y = detail.Y
			parent.Waypoints[i].Orbitals = detail.Orbitals
			parent.Waypoints[i].Orbits = detail.Orbits
			return
		}
	}
	parent.Waypoints = append(parent.Waypoints, system.WaypointRef{
		Symbol:   detail.Symbol,
		Type:     detail.Type,
		X:        detail.X,
		Y:        detail.Y,
		Orbitals: detail.Orbitals,
		Orbits:   detail.Orbits,
	})
}

// WaypointDetail returns a cached waypoint detail, or nil
func (w *Warehouse) WaypointDetail(symbol string) *system.WaypointDetail {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.waypoints[symbol]
}

// WaypointsInSystem returns the waypoint refs of a cached system
func (w *Warehouse) WaypointsInSystem(systemSymbol string) []system.WaypointRef {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.systems[systemSymbol]
	if s == nil {
		return nil
	}
	return s.Waypoints
}

// WaypointRef returns the shallow ref for a waypoint from its parent system
func (w *Warehouse) WaypointRef(waypointSymbol string) *system.WaypointRef {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.waypointRefLocked(waypointSymbol)
}

func (w *Warehouse) waypointRefLocked(waypointSymbol string) *system.WaypointRef {
	s := w.systems[shared.SystemSymbolOf(waypointSymbol)]
	if s == nil {
		return nil
	}
	for i := range s.Waypoints {
		if s.Waypoints[i].Symbol == waypointSymbol {
			return &s.Waypoints[i]
		}
	}
	return nil
}

// Children returns the symbols orbiting a waypoint
func (w *Warehouse) Children(waypointSymbol string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ref := w.waypointRefLocked(waypointSymbol)
	if ref == nil {
		return nil
	}
	return ref.OrbitalSymbols()
}

// Parent returns the symbol a waypoint orbits, or empty
func (w *Warehouse) Parent(waypointSymbol string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ref := w.waypointRefLocked(waypointSymbol)
	if ref == nil {
		return ""
	}
	return ref.Orbits
}

// UpsertShip stores or replaces a ship and guarantees a runtime exists
func (w *Warehouse) UpsertShip(ship *fleet.Ship) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ships[ship.Symbol] = ship
	if w.runtimes[ship.Symbol] == nil {
		w.runtimes[ship.Symbol] = fleet.NewRuntime()
	}
}

// UpsertFleet stores a batch of ships
func (w *Warehouse) UpsertFleet(ships []fleet.Ship) {
	for i := range ships {
		w.UpsertShip(&ships[i])
	}
}

// Ship returns a cached ship, or nil
func (w *Warehouse) Ship(symbol string) *fleet.Ship {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ships[symbol]
}

// ShipSymbols returns the symbols of all cached ships
func (w *Warehouse) ShipSymbols() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	symbols := make([]string, 0, len(w.ships))
	for symbol := range w.ships {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Runtime returns the controller state for a ship, or nil for unknown ships
func (w *Warehouse) Runtime(symbol string) *fleet.Runtime {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runtimes[symbol]
}

// ClaimedTargetMarkets returns the market waypoints currently claimed by
// runtimes other than excludeShip. The dispatcher excludes these when
// assigning probe targets.
func (w *Warehouse) ClaimedTargetMarkets(excludeShip string) map[string]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	claimed := make(map[string]bool)
	for symbol, rt := range w.runtimes {
		if symbol == excludeShip || rt.TargetMarket == "" {
			continue
		}
		claimed[rt.TargetMarket] = true
	}
	return claimed
}

// UpsertMarketSnapshot replaces the cached snapshot for a waypoint. Price
// movements against the previous snapshot are logged per good.
func (w *Warehouse) UpsertMarketSnapshot(snapshot *market.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	previous := w.snapshots[snapshot.WaypointSymbol]
	w.snapshots[snapshot.WaypointSymbol] = snapshot

	if previous == nil {
		logging.Infof("market %s: first snapshot, %d goods",
			snapshot.WaypointSymbol, len(snapshot.TradeGoods))
		return
	}

	changed := false
	for i := range snapshot.TradeGoods {
		g := &snapshot.TradeGoods[i]
		old := previous.Good(g.Symbol)
		if old == nil {
			continue
		}
		if old.SellPrice != g.SellPrice || old.PurchasePrice != g.PurchasePrice {
			changed = true
			logging.Infof("market %s: %s sell %d->%d buy %d->%d",
				snapshot.WaypointSymbol, g.Symbol,
				old.SellPrice, g.SellPrice, old.PurchasePrice, g.PurchasePrice)
		}
	}
	if !changed {
		logging.Infof("market %s: updated, prices unchanged", snapshot.WaypointSymbol)
	}
}

// MarketSnapshot returns the latest cached snapshot for a waypoint, or nil
func (w *Warehouse) MarketSnapshot(waypointSymbol string) *market.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshots[waypointSymbol]
}

// SnapshotWaypoints returns the waypoints with a cached snapshot
func (w *Warehouse) SnapshotWaypoints() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	symbols := make([]string, 0, len(w.snapshots))
	for symbol := range w.snapshots {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// RecordGoodObservation appends a sighting to memory and the store. Store
// failures are logged, not propagated; the cache stays authoritative for
// this tick.
func (w *Warehouse) RecordGoodObservation(ctx context.Context, obs market.GoodObservation) {
	w.mu.Lock()
	w.observations[obs.Good] = append(w.observations[obs.Good], obs)
	repo := w.observationRepo
	w.mu.Unlock()

	if repo != nil {
		if err := repo.Insert(ctx, &obs); err != nil {
			logging.Warnf("failed to persist observation for %s at %s: %v",
				obs.Good, obs.WaypointSymbol, err)
		}
	}
}

// Observations returns the in-memory sightings for a good
func (w *Warehouse) Observations(good string) []market.GoodObservation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.observations[good]
}

// BestSellObservation returns the sighting with the highest sell price
func (w *Warehouse) BestSellObservation(good string) *market.GoodObservation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return market.BestSell(w.observations[good])
}

// BestPurchaseObservation returns the sighting with the lowest purchase price
func (w *Warehouse) BestPurchaseObservation(good string) *market.GoodObservation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return market.BestPurchase(w.observations[good])
}

// HydrateMarketData rebuilds snapshots and seeds one observation per good
// from the newest stored row per (waypoint, good). Called once at startup so
// probes do not revisit markets the store already knows.
func (w *Warehouse) HydrateMarketData(ctx context.Context) error {
	if w.observationRepo == nil {
		return nil
	}
	latest, err := w.observationRepo.LatestPricesByWaypoint(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for waypoint, observations := range latest {
		if len(observations) == 0 {
			continue
		}
		snapshot := &market.Snapshot{
			SystemSymbol:   observations[0].SystemSymbol,
			WaypointSymbol: waypoint,
		}
		for _, obs := range observations {
			snapshot.TradeGoods = append(snapshot.TradeGoods, market.TradeGood{
				Symbol:        obs.Good,
				TradeVolume:   obs.TradeVolume,
				Supply:        obs.Supply,
				Activity:      obs.Activity,
				PurchasePrice: obs.PurchasePrice,
				SellPrice:     obs.SellPrice,
			})
			if snapshot.SeenAt == "" || obs.SeenAt > snapshot.SeenAt {
				snapshot.SeenAt = obs.SeenAt
			}
			w.observations[obs.Good] = append(w.observations[obs.Good], obs)
		}
		w.snapshots[waypoint] = snapshot
	}
	logging.Infof("hydrated %d market snapshots from storage", len(latest))
	return nil
}
