package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarlen/starhelm/internal/adapters/persistence"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
	"github.com/mkarlen/starhelm/internal/infrastructure/database"
)

func newMarketCmd() *cobra.Command {
	var good string

	cmd := &cobra.Command{
		Use:   "market",
		Short: "Show the latest stored market prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarket(good)
		},
	}
	cmd.Flags().StringVar(&good, "good", "", "filter to one trade good symbol")
	return cmd
}

func runMarket(good string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store := persistence.NewStore(db, nil, cfg.Database.RetentionDays)
	latest, err := store.Observations().LatestPricesByWaypoint(context.Background())
	if err != nil {
		return err
	}

	waypoints := make([]string, 0, len(latest))
	for waypoint := range latest {
		waypoints = append(waypoints, waypoint)
	}
	sort.Strings(waypoints)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WAYPOINT\tGOOD\tBUY\tSELL\tSEEN")
	for _, waypoint := range waypoints {
		for _, obs := range latest[waypoint] {
			if good != "" && obs.Good != good {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				waypoint, obs.Good, obs.PurchasePrice, obs.SellPrice, obs.SeenAt)
		}
	}
	return w.Flush()
}
