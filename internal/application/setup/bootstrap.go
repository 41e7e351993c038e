// Package setup wires the controller together. Everything hangs off one
// explicit Controller value; there are no package-level singletons.
package setup

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/adapters/persistence"
	"github.com/mkarlen/starhelm/internal/application/dispatch"
	"github.com/mkarlen/starhelm/internal/application/navigation"
	"github.com/mkarlen/starhelm/internal/application/scouting"
	"github.com/mkarlen/starhelm/internal/application/trading"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
	"github.com/mkarlen/starhelm/internal/infrastructure/database"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
)

// Controller bundles every component of a running instance
type Controller struct {
	Config    *config.Config
	Clock     shared.Clock
	DB        *gorm.DB
	Store     *persistence.Store
	Client    *api.Client
	Warehouse *warehouse.Warehouse
	Scanner   *scouting.Scanner
	Navigator *navigation.Navigator
	TradeLog  *trading.TradeLog
	Trader    *trading.Trader
	Queue     *dispatch.EventQueue
	Scheduler *dispatch.Scheduler

	dispatcher *dispatch.Dispatcher
	executor   *dispatch.Executor
}

// NewController builds the full component graph from configuration.
// withTradeLog controls whether operator log files are opened; read-only
// commands skip them.
func NewController(cfg *config.Config, token string, clock shared.Clock, withTradeLog bool) (*Controller, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	logging.SetLevel(cfg.Logging.Level)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store := persistence.NewStore(db, clock, cfg.Database.RetentionDays)
	client := api.NewClient(&cfg.API, token, clock)
	wh := warehouse.New(store.Observations(), clock)
	nav := navigation.NewNavigator(client, wh, clock)

	var tradeLog *trading.TradeLog
	if withTradeLog {
		tradeLog, err = trading.NewTradeLog(cfg.Logging.Dir)
		if err != nil {
			database.Close(db)
			return nil, err
		}
	}

	trader := trading.NewTrader(client, wh, nav, tradeLog, store.Transactions(), clock)
	queue := dispatch.NewEventQueue()
	dispatcher := dispatch.NewDispatcher(wh, clock)
	executor := dispatch.NewExecutor(wh, nav, trader, clock)
	scheduler := dispatch.NewScheduler(queue, dispatcher, executor, wh, &cfg.Scheduler, clock)

	return &Controller{
		Config:     cfg,
		Clock:      clock,
		DB:         db,
		Store:      store,
		Client:     client,
		Warehouse:  wh,
		Scanner:    scouting.NewScanner(client, wh),
		Navigator:  nav,
		TradeLog:   tradeLog,
		Trader:     trader,
		Queue:      queue,
		Scheduler:  scheduler,
		dispatcher: dispatcher,
		executor:   executor,
	}, nil
}

// Bootstrap loads the agent, scans the HQ system and fleet, rebuilds market
// state from storage and seeds the queue
func (c *Controller) Bootstrap(ctx context.Context) error {
	if err := c.Scanner.LoadAgent(ctx); err != nil {
		return err
	}
	agent := c.Warehouse.Agent()

	if _, err := c.Scanner.ScanSystemWaypoints(ctx, agent.HQSystem()); err != nil {
		return fmt.Errorf("failed to scan HQ system: %w", err)
	}
	if err := c.Warehouse.HydrateMarketData(ctx); err != nil {
		return fmt.Errorf("failed to hydrate market data: %w", err)
	}
	if _, err := c.Scanner.ScanFleet(ctx); err != nil {
		return fmt.Errorf("failed to scan fleet: %w", err)
	}

	if c.TradeLog != nil {
		c.TradeLog.LogCredits(shared.FormatISO(c.Clock.Now()), agent.Credits)
	}
	c.Scheduler.Seed()
	return nil
}

// Close releases the database and log files
func (c *Controller) Close() {
	if c.TradeLog != nil {
		c.TradeLog.Close()
	}
	database.Close(c.DB)
}
