package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
)

func newBuyShipCmd() *cobra.Command {
	var (
		waypoint string
		shipType string
	)

	cmd := &cobra.Command{
		Use:   "buy-ship",
		Short: "List or purchase ships at a shipyard",
		Long: `With only --waypoint, lists the ships on sale at that shipyard.
With --type as well, purchases one ship of that type there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuyShip(waypoint, shipType)
		},
	}
	cmd.Flags().StringVar(&waypoint, "waypoint", "", "shipyard waypoint symbol")
	cmd.Flags().StringVar(&shipType, "type", "", "ship type to purchase (e.g. SHIP_MINING_DRONE)")
	cmd.MarkFlagRequired("waypoint")
	return cmd
}

func runBuyShip(waypoint, shipType string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	token, err := config.AgentToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := api.NewClient(&cfg.API, token, nil)
	systemSymbol := shared.SystemSymbolOf(waypoint)

	if shipType == "" {
		shipyard, err := client.GetShipyard(ctx, systemSymbol, waypoint)
		if err != nil {
			return err
		}
		if len(shipyard.Ships) == 0 {
			fmt.Println("no listings visible; a ship must be at the waypoint to see prices")
			for _, t := range shipyard.ShipTypes {
				fmt.Printf("  %s\n", t.Type)
			}
			return nil
		}
		for _, listing := range shipyard.Ships {
			fmt.Printf("%-28s %10d  %s\n", listing.Type, listing.PurchasePrice, listing.Name)
		}
		return nil
	}

	result, err := client.PurchaseShip(ctx, shipType, waypoint)
	if err != nil {
		return err
	}
	fmt.Printf("purchased %s (%s) for %d credits; %d credits remain\n",
		result.Ship.Symbol, result.Transaction.ShipType,
		result.Transaction.Price, result.Agent.Credits)
	return nil
}
