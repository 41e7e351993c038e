package navigation

import (
	"sort"

	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/system"
)

// Candidate is a ranked navigation target
type Candidate struct {
	Symbol   string
	Distance float64
}

// RankedMineableWaypoints returns the cached mineable waypoints of a system
// ordered by straight-line distance from the given waypoint. Only waypoints
// with a cached detail can be judged mineable.
func RankedMineableWaypoints(wh *warehouse.Warehouse, systemSymbol, fromWaypoint string) []Candidate {
	from := wh.WaypointRef(fromWaypoint)
	if from == nil {
		return nil
	}

	var candidates []Candidate
	for _, ref := range wh.WaypointsInSystem(systemSymbol) {
		if ref.Symbol == fromWaypoint {
			continue
		}
		detail := wh.WaypointDetail(ref.Symbol)
		if detail == nil || !detail.IsMineable() {
			continue
		}
		candidates = append(candidates, Candidate{
			Symbol:   ref.Symbol,
			Distance: system.Distance(from.X, from.Y, ref.X, ref.Y),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}

// ClosestRefuelWaypoint returns the nearest waypoint whose cached snapshot
// sells fuel, or an empty symbol when none is known
func ClosestRefuelWaypoint(wh *warehouse.Warehouse, systemSymbol, fromWaypoint string) Candidate {
	from := wh.WaypointRef(fromWaypoint)
	if from == nil {
		return Candidate{}
	}

	best := Candidate{Distance: -1}
	for _, ref := range wh.WaypointsInSystem(systemSymbol) {
		snapshot := wh.MarketSnapshot(ref.Symbol)
		if snapshot == nil || !snapshot.SellsFuel() {
			continue
		}
		d := system.Distance(from.X, from.Y, ref.X, ref.Y)
		if best.Distance < 0 || d < best.Distance {
			best = Candidate{Symbol: ref.Symbol, Distance: d}
		}
	}
	if best.Distance < 0 {
		return Candidate{}
	}
	return best
}

// MarketplaceCandidates returns the cached marketplace waypoints of a system
// ordered by distance from the given waypoint, excluding any in the skip set
func MarketplaceCandidates(wh *warehouse.Warehouse, systemSymbol, fromWaypoint string, skip map[string]bool) []Candidate {
	from := wh.WaypointRef(fromWaypoint)
	if from == nil {
		return nil
	}

	var candidates []Candidate
	for _, ref := range wh.WaypointsInSystem(systemSymbol) {
		if skip[ref.Symbol] {
			continue
		}
		detail := wh.WaypointDetail(ref.Symbol)
		if detail == nil || !detail.HasTrait(system.TraitMarketplace) {
			continue
		}
		candidates = append(candidates, Candidate{
			Symbol:   ref.Symbol,
			Distance: system.Distance(from.X, from.Y, ref.X, ref.Y),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}
