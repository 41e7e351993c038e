package persistence

import (
	"context"
	"fmt"

	"github.com/mkarlen/starhelm/internal/domain/market"
)

// ObservationRepository persists market price sightings
type ObservationRepository struct {
	store *Store
}

// Insert appends one observation and opportunistically prunes old rows
func (r *ObservationRepository) Insert(ctx context.Context, obs *market.GoodObservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	model := &MarketObservationModel{
		Ts:          obs.SeenAt,
		System:      obs.SystemSymbol,
		Waypoint:    obs.WaypointSymbol,
		Good:        obs.Good,
		BuyPrice:    float64(obs.PurchasePrice),
		SellPrice:   float64(obs.SellPrice),
		TradeVolume: obs.TradeVolume,
		Supply:      obs.Supply,
		Activity:    obs.Activity,
	}
	if err := r.store.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}
	return r.store.pruneLocked()
}

// LatestPricesByWaypoint returns the newest observation per (waypoint, good)
// pair across the whole store. Raw SQL keeps the correlated-max query in one
// round trip.
func (r *ObservationRepository) LatestPricesByWaypoint(ctx context.Context) (map[string][]market.GoodObservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []MarketObservationModel
	query := `
		SELECT o.* FROM market_observations o
		WHERE o.ts = (
			SELECT MAX(i.ts) FROM market_observations i
			WHERE i.waypoint = o.waypoint AND i.good = o.good
		)
		ORDER BY o.waypoint, o.good`
	if err := r.store.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}

	byWaypoint := make(map[string][]market.GoodObservation)
	for _, row := range rows {
		byWaypoint[row.Waypoint] = append(byWaypoint[row.Waypoint], market.GoodObservation{
			SystemSymbol:   row.System,
			WaypointSymbol: row.Waypoint,
			Good:           row.Good,
			PurchasePrice:  int(row.BuyPrice),
			SellPrice:      int(row.SellPrice),
			TradeVolume:    row.TradeVolume,
			Supply:         row.Supply,
			Activity:       row.Activity,
			SeenAt:         row.Ts,
		})
	}
	return byWaypoint, nil
}

// HistoryForGood returns observations for one good, newest first
func (r *ObservationRepository) HistoryForGood(ctx context.Context, good string, limit int) ([]market.GoodObservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []MarketObservationModel
	query := r.store.db.WithContext(ctx).
		Where("good = ?", good).
		Order("ts DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", good, err)
	}

	observations := make([]market.GoodObservation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, market.GoodObservation{
			SystemSymbol:   row.System,
			WaypointSymbol: row.Waypoint,
			Good:           row.Good,
			PurchasePrice:  int(row.BuyPrice),
			SellPrice:      int(row.SellPrice),
			TradeVolume:    row.TradeVolume,
			Supply:         row.Supply,
			Activity:       row.Activity,
			SeenAt:         row.Ts,
		})
	}
	return observations, nil
}
