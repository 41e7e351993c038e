package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mkarlen/starhelm/internal/domain/system"
)

// PaginationMeta is the meta block of a paged listing
type PaginationMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListSystems fetches one page of the systems listing (GET /systems)
func (c *Client) ListSystems(ctx context.Context, page, limit int) ([]system.System, *PaginationMeta, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Data []system.System `json:"data"`
		Meta PaginationMeta  `json:"meta"`
	}
	if err := c.do(ctx, "GET", "/systems", params, nil, &response); err != nil {
		return nil, nil, fmt.Errorf("failed to list systems: %w", err)
	}
	return response.Data, &response.Meta, nil
}
