package api

import (
	"context"
	"fmt"

	"github.com/mkarlen/starhelm/internal/domain/player"
)

// GetAgent fetches the authenticated agent (GET /my/agent)
func (c *Client) GetAgent(ctx context.Context) (*player.Agent, error) {
	var response struct {
		Data player.Agent `json:"data"`
	}
	if err := c.do(ctx, "GET", "/my/agent", nil, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &response.Data, nil
}
