package persistence

import (
	"context"
	"fmt"
)

// TransactionRecord is one executed market transaction as the application
// layers report it
type TransactionRecord struct {
	Ts           string
	Ship         string
	Waypoint     string
	Action       string
	Symbol       string
	Units        int
	UnitPrice    float64
	TotalPrice   float64
	CreditsAfter int64
}

// TransactionRepository persists executed transactions
type TransactionRepository struct {
	store *Store
}

// Insert appends one transaction and opportunistically prunes old rows
func (r *TransactionRepository) Insert(ctx context.Context, record *TransactionRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	model := &TransactionModel{
		Ts:           record.Ts,
		Ship:         record.Ship,
		Waypoint:     record.Waypoint,
		Action:       record.Action,
		Symbol:       record.Symbol,
		Units:        record.Units,
		UnitPrice:    record.UnitPrice,
		TotalPrice:   record.TotalPrice,
		CreditsAfter: record.CreditsAfter,
	}
	if err := r.store.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return r.store.pruneLocked()
}

// RecentByShip returns a ship's transactions, newest first
func (r *TransactionRepository) RecentByShip(ctx context.Context, shipSymbol string, limit int) ([]TransactionRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []TransactionModel
	query := r.store.db.WithContext(ctx).
		Where("ship = ?", shipSymbol).
		Order("ts DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", shipSymbol, err)
	}

	records := make([]TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, TransactionRecord{
			Ts:           row.Ts,
			Ship:         row.Ship,
			Waypoint:     row.Waypoint,
			Action:       row.Action,
			Symbol:       row.Symbol,
			Units:        row.Units,
			UnitPrice:    row.UnitPrice,
			TotalPrice:   row.TotalPrice,
			CreditsAfter: row.CreditsAfter,
		})
	}
	return records, nil
}
