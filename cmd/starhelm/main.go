package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "starhelm",
		Short: "Autonomous fleet controller for the SpaceTraders API",
		Long: `starhelm runs a fleet of probes and excavators against the SpaceTraders
API: probes chart market prices, excavators mine and sell, and every price
sighting is recorded for later queries.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	root.AddCommand(newDaemonCmd())
	root.AddCommand(newMarketCmd())
	root.AddCommand(newBuyShipCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
