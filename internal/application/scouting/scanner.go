// Package scouting syncs the remote world into the warehouse: agent,
// systems, waypoints and the fleet.
package scouting

import (
	"context"
	"fmt"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
)

const pageLimit = 20

// Scanner pulls paged listings from the API and upserts them
type Scanner struct {
	client    *api.Client
	warehouse *warehouse.Warehouse
}

// NewScanner creates a scanner over the shared client and warehouse
func NewScanner(client *api.Client, wh *warehouse.Warehouse) *Scanner {
	return &Scanner{client: client, warehouse: wh}
}

// LoadAgent fetches the authenticated agent into the warehouse
func (s *Scanner) LoadAgent(ctx context.Context) error {
	agent, err := s.client.GetAgent(ctx)
	if err != nil {
		return fmt.Errorf("failed to load agent: %w", err)
	}
	s.warehouse.LoadAgent(agent)
	logging.Infof("agent %s: %d credits, HQ %s", agent.Symbol, agent.Credits, agent.Headquarters)
	return nil
}

// ScanSystems fetches up to maxPages pages of the systems listing.
// maxPages <= 0 follows pagination to the end.
func (s *Scanner) ScanSystems(ctx context.Context, maxPages int) (int, error) {
	total := 0
	page := 1
	for {
		systems, meta, err := s.client.ListSystems(ctx, page, pageLimit)
		if err != nil {
			return total, err
		}
		s.warehouse.UpsertSystems(systems)
		total += len(systems)
		if len(systems) == 0 || meta.Page*meta.Limit >= meta.Total {
			break
		}
		page++
		if maxPages > 0 && page > maxPages {
			break
		}
	}
	logging.Infof("scanned %d systems", total)
	return total, nil
}

// ScanWaypointsByTrait fetches the waypoints of a system carrying a trait
// and caches their details
func (s *Scanner) ScanWaypointsByTrait(ctx context.Context, systemSymbol, trait string) (int, error) {
	waypoints, err := s.client.FindWaypointsByTrait(ctx, systemSymbol, trait)
	if err != nil {
		return 0, err
	}
	for i := range waypoints {
		s.warehouse.UpsertWaypointDetail(&waypoints[i])
	}
	logging.Infof("scanned %d %s waypoints in %s", len(waypoints), trait, systemSymbol)
	return len(waypoints), nil
}

// ScanSystemWaypoints fetches every waypoint of a system, following
// pagination, and caches their details
func (s *Scanner) ScanSystemWaypoints(ctx context.Context, systemSymbol string) (int, error) {
	total := 0
	page := 1
	for {
		waypoints, meta, err := s.client.ListWaypoints(ctx, systemSymbol, page, pageLimit, "")
		if err != nil {
			return total, err
		}
		for i := range waypoints {
			s.warehouse.UpsertWaypointDetail(&waypoints[i])
		}
		total += len(waypoints)
		if len(waypoints) == 0 || meta.Page*meta.Limit >= meta.Total {
			break
		}
		page++
	}
	logging.Infof("scanned %d waypoints in %s", total, systemSymbol)
	return total, nil
}

// ScanFleet fetches every owned ship, following pagination
func (s *Scanner) ScanFleet(ctx context.Context) ([]fleet.Ship, error) {
	var all []fleet.Ship
	page := 1
	for {
		ships, meta, err := s.client.ListShips(ctx, page, pageLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, ships...)
		if len(ships) == 0 || meta.Page*meta.Limit >= meta.Total {
			break
		}
		page++
	}
	s.warehouse.UpsertFleet(all)
	logging.Infof("scanned fleet: %d ships", len(all))
	return all, nil
}
