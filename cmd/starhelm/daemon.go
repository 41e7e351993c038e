package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkarlen/starhelm/internal/application/setup"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
	"github.com/mkarlen/starhelm/internal/infrastructure/pidfile"
)

func newDaemonCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the fleet controller loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "kill an already running instance first")
	return cmd
}

func runDaemon(force bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	token, err := config.AgentToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !force {
			return fmt.Errorf("%w (use --force to replace it)", err)
		}
		if err := pf.KillExisting(); err != nil {
			return fmt.Errorf("failed to stop running instance: %w", err)
		}
		if err := pf.Acquire(); err != nil {
			return err
		}
	}
	defer pf.Release()

	controller, err := setup.NewController(cfg, token, nil, true)
	if err != nil {
		return err
	}
	defer controller.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := controller.Bootstrap(ctx); err != nil {
		return err
	}

	logging.Infof("controller started, session %s", controller.TradeLog.SessionID)
	if err := controller.Scheduler.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	logging.Infof("controller stopped")
	return nil
}
