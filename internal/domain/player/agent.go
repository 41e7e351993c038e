package player

import "github.com/mkarlen/starhelm/internal/domain/shared"

// Agent is the player account. Loaded once at startup; credits are updated
// from purchase and sell responses rather than refetched.
type Agent struct {
	AccountID       string `json:"accountId"`
	Symbol          string `json:"symbol"`
	Headquarters    string `json:"headquarters"`
	Credits         int64  `json:"credits"`
	StartingFaction string `json:"startingFaction"`
	ShipCount       int    `json:"shipCount"`
}

// HQSystem returns the system symbol of the agent's headquarters waypoint
func (a *Agent) HQSystem() string {
	return shared.SystemSymbolOf(a.Headquarters)
}
