package dispatch

import (
	"context"
	"time"

	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
	"github.com/mkarlen/starhelm/internal/infrastructure/logging"
	"github.com/mkarlen/starhelm/pkg/utils"
)

// Scheduler advances one ship at a time, ordered by readiness. Sleeps are
// bounded so cancellation and earlier wakeups are noticed quickly.
type Scheduler struct {
	queue      *EventQueue
	dispatcher *Dispatcher
	executor   *Executor
	warehouse  *warehouse.Warehouse
	clock      shared.Clock

	minSleep       time.Duration
	maxSleep       time.Duration
	failureBackoff time.Duration
}

// NewScheduler creates a scheduler over an already seeded queue
func NewScheduler(queue *EventQueue, dispatcher *Dispatcher, executor *Executor,
	wh *warehouse.Warehouse, cfg *config.SchedulerConfig, clock shared.Clock) *Scheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Scheduler{
		queue:          queue,
		dispatcher:     dispatcher,
		executor:       executor,
		warehouse:      wh,
		clock:          clock,
		minSleep:       cfg.MinSleep,
		maxSleep:       cfg.MaxSleep,
		failureBackoff: cfg.FailureBackoff,
	}
}

// Run drives the loop until the queue drains or the context is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		priority, ok := s.queue.PeekNextPriority()
		if !ok {
			logging.Infof("scheduler: queue empty, exiting")
			return nil
		}

		target := shared.ParseISOOr(priority, s.clock.Now())
		wait := target.Sub(s.clock.Now())
		if wait > 0 {
			s.clock.Sleep(utils.ClampDuration(wait, s.minSleep, s.maxSleep))
			continue
		}

		shipSymbol, ok := s.queue.ExtractMin()
		if !ok {
			continue
		}
		if s.warehouse.Ship(shipSymbol) == nil {
			logging.Warnf("scheduler: ship %s vanished, dropping", shipSymbol)
			continue
		}

		s.tick(ctx, shipSymbol)
	}
}

// tick decides and executes one action for one ship, then re-enqueues it
func (s *Scheduler) tick(ctx context.Context, shipSymbol string) {
	action := s.dispatcher.Decide(shipSymbol)
	logging.Debugf("scheduler: %s -> %s", shipSymbol, action)

	if action != ActionNoop {
		if err := s.executor.Execute(ctx, shipSymbol, action); err != nil {
			logging.Errorf("scheduler: %s %s failed: %v", shipSymbol, action, err)
			if rt := s.warehouse.Runtime(shipSymbol); rt != nil {
				rt.NextWakeup = shared.FormatISO(s.clock.Now().Add(s.failureBackoff))
			}
		}
	}

	s.queue.Push(shipSymbol, s.dispatcher.ShipReadiness(shipSymbol))
}

// Seed enqueues every cached ship at its current readiness
func (s *Scheduler) Seed() {
	for _, symbol := range s.warehouse.ShipSymbols() {
		s.queue.Push(symbol, s.dispatcher.ShipReadiness(symbol))
	}
	logging.Infof("scheduler: seeded %d ships", s.queue.Size())
}
