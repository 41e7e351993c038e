package dispatch

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlen/starhelm/internal/application/navigation"
	"github.com/mkarlen/starhelm/internal/application/trading"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
)

func testSchedulerConfig() *config.SchedulerConfig {
	return &config.SchedulerConfig{
		MinSleep:       50 * time.Millisecond,
		MaxSleep:       500 * time.Millisecond,
		FailureBackoff: 30 * time.Second,
	}
}

func newScheduler(w *warehouse.Warehouse, clock shared.Clock, queue *EventQueue) *Scheduler {
	client := testClient("http://unused.invalid", clock)
	nav := navigation.NewNavigator(client, w, clock)
	trader := trading.NewTrader(client, w, nav, nil, nil, clock)
	executor := NewExecutor(w, nav, trader, clock)
	dispatcher := NewDispatcher(w, clock)
	return NewScheduler(queue, dispatcher, executor, w, testSchedulerConfig(), clock)
}

func TestSchedulerExitsOnEmptyQueue(t *testing.T) {
	w := worldWithMarkets()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newScheduler(w, clock, NewEventQueue())

	assert.NoError(t, s.Run(context.Background()))
}

func TestSchedulerDropsVanishedShips(t *testing.T) {
	w := worldWithMarkets()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	queue := NewEventQueue()
	queue.Push("GHOST-1", shared.FormatISO(clock.Now()))
	s := newScheduler(w, clock, queue)

	// The vanished ship is popped, dropped and never re-enqueued
	assert.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 0, queue.Size())
}

func TestSchedulerHonorsCancellation(t *testing.T) {
	w := worldWithMarkets()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	queue := NewEventQueue()
	queue.Push("GHOST-1", shared.FormatISO(clock.Now()))
	s := newScheduler(w, clock, queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestSchedulerSleepsTowardFutureReadiness(t *testing.T) {
	w := worldWithMarkets()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	queue := NewEventQueue()
	queue.Push("GHOST-1", shared.FormatISO(clock.Now().Add(200*time.Millisecond)))
	s := newScheduler(w, clock, queue)

	require.NoError(t, s.Run(context.Background()))

	// The loop slept in bounded steps rather than one long block
	require.NotEmpty(t, clock.Slept)
	for _, d := range clock.Slept {
		assert.LessOrEqual(t, d, 500*time.Millisecond)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestSchedulerTickReenqueuesAfterNoop(t *testing.T) {
	w := worldWithMarkets()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	// COMMAND role matches no branch of the decision tree
	ship := excavatorShip("CMD-1", 0, 40)
	ship.Registration.Role = fleet.RoleCommand
	w.UpsertShip(ship)

	queue := NewEventQueue()
	s := newScheduler(w, clock, queue)
	s.tick(context.Background(), "CMD-1")

	assert.Equal(t, 1, queue.Size())
	priority, ok := queue.PeekNextPriority()
	require.True(t, ok)
	assert.Equal(t, shared.FormatISO(clock.Now()), priority)
}

func TestSchedulerResumesShipAfterStaleTransit(t *testing.T) {
	server := &shipServer{flightMode: fleet.FlightModeCruise, shipJSON: arrivedShipJSON}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w := worldWithMarkets()
	ship := excavatorShip("HULK-1", 0, 40)
	ship.Nav.Status = fleet.NavStatusInTransit
	w.UpsertShip(ship)
	rt := w.Runtime("HULK-1")
	rt.BeginNavigation(fleet.DestinationMine)
	rt.MineTarget = "X1-GZ7-D4"
	rt.NextWakeup = "2024-03-01T12:05:00.000Z"

	client := testClient(ts.URL, clock)
	nav := navigation.NewNavigator(client, w, clock)
	trader := trading.NewTrader(client, w, nav, nil, nil, clock)
	queue := NewEventQueue()
	s := NewScheduler(queue, NewDispatcher(w, clock), NewExecutor(w, nav, trader, clock),
		w, testSchedulerConfig(), clock)

	// Woken long after the ETA: the first tick refreshes the arrived ship,
	// the second extracts at the deposit
	clock.SetTime(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
	s.tick(context.Background(), "HULK-1")
	assert.Equal(t, fleet.NavStatusInOrbit, ship.Nav.Status)
	assert.Equal(t, "X1-GZ7-D4", ship.Nav.WaypointSymbol)

	s.tick(context.Background(), "HULK-1")
	assert.Equal(t, fleet.StateMining, rt.State)
	assert.Equal(t, 8, ship.Cargo.Units)
}

func TestSchedulerTickBacksOffFailedActions(t *testing.T) {
	w := worldWithMarkets()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	// Probe with an unreachable API: the navigate fails and the ship is
	// re-enqueued in the future
	w.UpsertShip(probeShip("PROBE-1"))

	queue := NewEventQueue()
	s := newScheduler(w, clock, queue)
	s.tick(context.Background(), "PROBE-1")

	assert.Equal(t, 1, queue.Size())
	priority, ok := queue.PeekNextPriority()
	require.True(t, ok)
	assert.Greater(t, priority, shared.FormatISO(clock.Now()))
}
