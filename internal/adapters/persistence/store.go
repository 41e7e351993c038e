package persistence

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mkarlen/starhelm/internal/domain/shared"
)

// pruneInterval bounds how often the lazy retention sweep may run
const pruneInterval = time.Hour

// Store owns the embedded database. All writes go through a single mutex;
// the scheduler is single-threaded but CLI commands can share the file.
type Store struct {
	db        *gorm.DB
	clock     shared.Clock
	retention time.Duration

	mu        sync.Mutex
	lastPrune time.Time
}

// NewStore creates a store over an open connection. A nil clock selects the
// real clock; retentionDays <= 0 disables pruning.
func NewStore(db *gorm.DB, clock shared.Clock, retentionDays int) *Store {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Store{
		db:        db,
		clock:     clock,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Observations returns the observation repository view of the store
func (s *Store) Observations() *ObservationRepository {
	return &ObservationRepository{store: s}
}

// Transactions returns the transaction repository view of the store
func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{store: s}
}

// pruneLocked deletes rows older than the retention window. Runs at most
// once per pruneInterval; callers hold s.mu.
func (s *Store) pruneLocked() error {
	if s.retention <= 0 {
		return nil
	}
	now := s.clock.Now()
	if !s.lastPrune.IsZero() && now.Sub(s.lastPrune) < pruneInterval {
		return nil
	}
	s.lastPrune = now

	cutoff := shared.FormatISO(now.Add(-s.retention))
	if err := s.db.Where("ts < ?", cutoff).Delete(&MarketObservationModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune market observations: %w", err)
	}
	if err := s.db.Where("ts < ?", cutoff).Delete(&TransactionModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune transactions: %w", err)
	}
	return nil
}
