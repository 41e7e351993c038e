package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/player"
)

// emptyBody satisfies endpoints that reject a missing JSON body
var emptyBody = map[string]interface{}{}

// MarketTransaction is the transaction block of refuel/sell/purchase
// responses
type MarketTransaction struct {
	WaypointSymbol string `json:"waypointSymbol"`
	ShipSymbol     string `json:"shipSymbol"`
	TradeSymbol    string `json:"tradeSymbol"`
	Type           string `json:"type"`
	Units          int    `json:"units"`
	PricePerUnit   int    `json:"pricePerUnit"`
	TotalPrice     int    `json:"totalPrice"`
	Timestamp      string `json:"timestamp"`
}

// GetShip fetches one ship (GET /my/ships/{s})
func (c *Client) GetShip(ctx context.Context, shipSymbol string) (*fleet.Ship, error) {
	var response struct {
		Data fleet.Ship `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s", shipSymbol)
	if err := c.do(ctx, "GET", path, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get ship %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// ListShips fetches one page of the fleet listing (GET /my/ships)
func (c *Client) ListShips(ctx context.Context, page, limit int) ([]fleet.Ship, *PaginationMeta, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Data []fleet.Ship   `json:"data"`
		Meta PaginationMeta `json:"meta"`
	}
	if err := c.do(ctx, "GET", "/my/ships", params, nil, &response); err != nil {
		return nil, nil, fmt.Errorf("failed to list ships: %w", err)
	}
	return response.Data, &response.Meta, nil
}

// GetCargo fetches a ship's cargo (GET /my/ships/{s}/cargo)
func (c *Client) GetCargo(ctx context.Context, shipSymbol string) (*fleet.Cargo, error) {
	var response struct {
		Data fleet.Cargo `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/cargo", shipSymbol)
	if err := c.do(ctx, "GET", path, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get cargo for %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// OrbitShip moves a docked ship to orbit (POST /my/ships/{s}/orbit)
func (c *Client) OrbitShip(ctx context.Context, shipSymbol string) (*fleet.Nav, error) {
	var response struct {
		Data struct {
			Nav fleet.Nav `json:"nav"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/orbit", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to orbit ship %s: %w", shipSymbol, err)
	}
	return &response.Data.Nav, nil
}

// DockShip docks an orbiting ship (POST /my/ships/{s}/dock)
func (c *Client) DockShip(ctx context.Context, shipSymbol string) (*fleet.Nav, error) {
	var response struct {
		Data struct {
			Nav fleet.Nav `json:"nav"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/dock", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to dock ship %s: %w", shipSymbol, err)
	}
	return &response.Data.Nav, nil
}

// NavigateResult is the payload of navigate/warp responses
type NavigateResult struct {
	Fuel fleet.Fuel `json:"fuel"`
	Nav  fleet.Nav  `json:"nav"`
}

// NavigateShip starts an in-system transit (POST /my/ships/{s}/navigate)
func (c *Client) NavigateShip(ctx context.Context, shipSymbol, waypointSymbol string) (*NavigateResult, error) {
	body := map[string]string{"waypointSymbol": waypointSymbol}

	var response struct {
		Data NavigateResult `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/navigate", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to navigate ship %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// WarpShip warps to another system (POST /my/ships/{s}/warp)
func (c *Client) WarpShip(ctx context.Context, shipSymbol, systemSymbol string) (*NavigateResult, error) {
	body := map[string]string{"systemSymbol": systemSymbol}

	var response struct {
		Data NavigateResult `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/warp", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to warp ship %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// JumpResult is the payload of a jump response
type JumpResult struct {
	Nav      fleet.Nav      `json:"nav"`
	Cooldown fleet.Cooldown `json:"cooldown"`
}

// JumpShip jumps to another system (POST /my/ships/{s}/jump)
func (c *Client) JumpShip(ctx context.Context, shipSymbol, systemSymbol string) (*JumpResult, error) {
	body := map[string]string{"systemSymbol": systemSymbol}

	var response struct {
		Data JumpResult `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/jump", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to jump ship %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// SetFlightMode patches a ship's flight mode (PATCH /my/ships/{s}/nav)
func (c *Client) SetFlightMode(ctx context.Context, shipSymbol string, mode fleet.FlightMode) (*fleet.Nav, error) {
	body := map[string]string{"flightMode": string(mode)}

	var response struct {
		Data fleet.Nav `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/nav", shipSymbol)
	if err := c.do(ctx, "PATCH", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to set flight mode for %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// ExtractResult is the payload of an extract response
type ExtractResult struct {
	Cooldown   fleet.Cooldown `json:"cooldown"`
	Extraction struct {
		ShipSymbol string `json:"shipSymbol"`
		Yield      struct {
			Symbol string `json:"symbol"`
			Units  int    `json:"units"`
		} `json:"yield"`
	} `json:"extraction"`
	Cargo fleet.Cargo `json:"cargo"`
}

// Extract mines at the current waypoint (POST /my/ships/{s}/extract)
func (c *Client) Extract(ctx context.Context, shipSymbol string) (*ExtractResult, error) {
	var response struct {
		Data ExtractResult `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/extract", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, emptyBody, &response); err != nil {
		return nil, fmt.Errorf("failed to extract with %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// Jettison dumps cargo overboard (POST /my/ships/{s}/jettison)
func (c *Client) Jettison(ctx context.Context, shipSymbol, goodSymbol string, units int) (*fleet.Cargo, error) {
	body := map[string]interface{}{"symbol": goodSymbol, "units": units}

	var response struct {
		Data struct {
			Cargo fleet.Cargo `json:"cargo"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/jettison", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to jettison %s from %s: %w", goodSymbol, shipSymbol, err)
	}
	return &response.Data.Cargo, nil
}

// RefuelResult is the payload of a refuel response
type RefuelResult struct {
	Agent       *player.Agent     `json:"agent"`
	Fuel        fleet.Fuel        `json:"fuel"`
	Transaction MarketTransaction `json:"transaction"`
}

// RefuelShip refuels at the current waypoint (POST /my/ships/{s}/refuel).
// Zero units means fill the tank; fromCargo draws FUEL from the hold.
func (c *Client) RefuelShip(ctx context.Context, shipSymbol string, units int, fromCargo bool) (*RefuelResult, error) {
	body := map[string]interface{}{}
	if units > 0 {
		body["units"] = units
	}
	if fromCargo {
		body["fromCargo"] = true
	}

	var response struct {
		Data RefuelResult `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/refuel", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to refuel ship %s: %w", shipSymbol, err)
	}
	return &response.Data, nil
}

// TradeResult is the payload of sell/purchase-cargo responses
type TradeResult struct {
	Agent       *player.Agent     `json:"agent"`
	Cargo       fleet.Cargo       `json:"cargo"`
	Transaction MarketTransaction `json:"transaction"`
}

// SellCargo sells goods at the current market (POST /my/ships/{s}/sell)
func (c *Client) SellCargo(ctx context.Context, shipSymbol, goodSymbol string, units int) (*TradeResult, error) {
	body := map[string]interface{}{"symbol": goodSymbol, "units": units}

	var response struct {
		Data TradeResult `json:"data"`
	}
	path := fmt.Sprintf("/my/ships/%s/sell", shipSymbol)
	if err := c.do(ctx, "POST", path, nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to sell %s from %s: %w", goodSymbol, shipSymbol, err)
	}
	return &response.Data, nil
}

// ShipPurchaseResult is the payload of a ship purchase response
type ShipPurchaseResult struct {
	Agent       *player.Agent `json:"agent"`
	Ship        fleet.Ship    `json:"ship"`
	Transaction struct {
		WaypointSymbol string `json:"waypointSymbol"`
		ShipSymbol     string `json:"shipSymbol"`
		ShipType       string `json:"shipType"`
		Price          int    `json:"price"`
		AgentSymbol    string `json:"agentSymbol"`
		Timestamp      string `json:"timestamp"`
	} `json:"transaction"`
}

// PurchaseShip buys a ship at a shipyard (POST /my/ships)
func (c *Client) PurchaseShip(ctx context.Context, shipType, waypointSymbol string) (*ShipPurchaseResult, error) {
	body := map[string]interface{}{
		"shipType":       shipType,
		"waypointSymbol": waypointSymbol,
	}

	var response struct {
		Data ShipPurchaseResult `json:"data"`
	}
	if err := c.do(ctx, "POST", "/my/ships", nil, body, &response); err != nil {
		return nil, fmt.Errorf("failed to purchase ship: %w", err)
	}
	return &response.Data, nil
}
