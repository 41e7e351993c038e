package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mkarlen/starhelm/internal/domain/market"
	"github.com/mkarlen/starhelm/internal/domain/system"
)

// ListWaypoints fetches one page of a system's waypoints
// (GET /systems/{s}/waypoints). An optional trait filter narrows results
// server-side.
func (c *Client) ListWaypoints(ctx context.Context, systemSymbol string, page, limit int, trait string) ([]system.WaypointDetail, *PaginationMeta, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if trait != "" {
		params.Set("traits", trait)
	}

	var response struct {
		Data []system.WaypointDetail `json:"data"`
		Meta PaginationMeta          `json:"meta"`
	}
	path := fmt.Sprintf("/systems/%s/waypoints", systemSymbol)
	if err := c.do(ctx, "GET", path, params, nil, &response); err != nil {
		return nil, nil, fmt.Errorf("failed to list waypoints for %s: %w", systemSymbol, err)
	}
	return response.Data, &response.Meta, nil
}

// FindWaypointsByTrait fetches every waypoint in a system carrying a trait,
// following pagination to the end.
func (c *Client) FindWaypointsByTrait(ctx context.Context, systemSymbol, trait string) ([]system.WaypointDetail, error) {
	var all []system.WaypointDetail
	page := 1
	limit := 20
	for {
		waypoints, meta, err := c.ListWaypoints(ctx, systemSymbol, page, limit, trait)
		if err != nil {
			return nil, err
		}
		all = append(all, waypoints...)
		if len(waypoints) == 0 || meta.Page*meta.Limit >= meta.Total {
			break
		}
		page++
	}
	return all, nil
}

// GetWaypoint fetches a waypoint's full detail
// (GET /systems/{s}/waypoints/{w})
func (c *Client) GetWaypoint(ctx context.Context, systemSymbol, waypointSymbol string) (*system.WaypointDetail, error) {
	var response struct {
		Data system.WaypointDetail `json:"data"`
	}
	path := fmt.Sprintf("/systems/%s/waypoints/%s", systemSymbol, waypointSymbol)
	if err := c.do(ctx, "GET", path, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get waypoint %s: %w", waypointSymbol, err)
	}
	return &response.Data, nil
}

// MarketData is the wire shape of a market listing. TradeGoods is only
// present when one of the agent's ships is at the waypoint.
type MarketData struct {
	Symbol     string             `json:"symbol"`
	TradeGoods []market.TradeGood `json:"tradeGoods"`
}

// GetMarket fetches market data for a waypoint
// (GET /systems/{s}/waypoints/{w}/market)
func (c *Client) GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*MarketData, error) {
	var response struct {
		Data MarketData `json:"data"`
	}
	path := fmt.Sprintf("/systems/%s/waypoints/%s/market", systemSymbol, waypointSymbol)
	if err := c.do(ctx, "GET", path, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get market %s: %w", waypointSymbol, err)
	}
	return &response.Data, nil
}

// ShipListing is one purchasable ship at a shipyard
type ShipListing struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PurchasePrice int    `json:"purchasePrice"`
}

// ShipyardData is the wire shape of a shipyard listing
type ShipyardData struct {
	Symbol    string `json:"symbol"`
	ShipTypes []struct {
		Type string `json:"type"`
	} `json:"shipTypes"`
	Ships           []ShipListing `json:"ships"`
	ModificationFee int           `json:"modificationsFee"`
}

// GetShipyard fetches shipyard data for a waypoint
// (GET /systems/{s}/waypoints/{w}/shipyard)
func (c *Client) GetShipyard(ctx context.Context, systemSymbol, waypointSymbol string) (*ShipyardData, error) {
	var response struct {
		Data ShipyardData `json:"data"`
	}
	path := fmt.Sprintf("/systems/%s/waypoints/%s/shipyard", systemSymbol, waypointSymbol)
	if err := c.do(ctx, "GET", path, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get shipyard %s: %w", waypointSymbol, err)
	}
	return &response.Data, nil
}
