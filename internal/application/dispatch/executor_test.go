package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlen/starhelm/internal/adapters/api"
	"github.com/mkarlen/starhelm/internal/application/navigation"
	"github.com/mkarlen/starhelm/internal/application/trading"
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
)

// shipServer stubs the remote ship endpoints with just enough state to
// exercise executor flows
type shipServer struct {
	flightMode      fleet.FlightMode
	cruiseErr       int    // error code returned for CRUISE navigates, 0 for none
	extractCapacity int    // cargo capacity echoed by extract responses
	shipJSON        string // response body for ship polls

	navigations []string // flight mode of each navigate call
}

func (s *shipServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodGet && strings.HasSuffix(req.URL.Path, "/market"):
			fmt.Fprint(rw, `{"data":{"symbol":"X1-GZ7-B2","tradeGoods":[{"symbol":"IRON_ORE","tradeVolume":100,"supply":"ABUNDANT","purchasePrice":30,"sellPrice":42},{"symbol":"FUEL","purchasePrice":80,"sellPrice":60}]}}`)

		case req.Method == http.MethodGet && strings.Contains(req.URL.Path, "/my/ships/"):
			if s.shipJSON == "" {
				t.Errorf("unexpected ship poll: %s", req.URL.Path)
				rw.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(rw, s.shipJSON)

		case strings.HasSuffix(req.URL.Path, "/orbit"):
			fmt.Fprint(rw, `{"data":{"nav":{"systemSymbol":"X1-GZ7","waypointSymbol":"X1-GZ7-A1","status":"IN_ORBIT","flightMode":"`+string(s.flightMode)+`"}}}`)

		case strings.HasSuffix(req.URL.Path, "/nav"):
			var body struct {
				FlightMode fleet.FlightMode `json:"flightMode"`
			}
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			s.flightMode = body.FlightMode
			fmt.Fprint(rw, `{"data":{"systemSymbol":"X1-GZ7","waypointSymbol":"X1-GZ7-A1","status":"IN_ORBIT","flightMode":"`+string(s.flightMode)+`"}}`)

		case strings.HasSuffix(req.URL.Path, "/navigate"):
			s.navigations = append(s.navigations, string(s.flightMode))
			if s.flightMode == fleet.FlightModeCruise && s.cruiseErr != 0 {
				rw.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(rw, `{"error":{"code":%d,"message":"insufficient fuel"}}`, s.cruiseErr)
				return
			}
			fmt.Fprint(rw, `{"data":{"fuel":{"current":20,"capacity":100},"nav":{"systemSymbol":"X1-GZ7","waypointSymbol":"X1-GZ7-D4","status":"IN_TRANSIT","flightMode":"`+string(s.flightMode)+`","route":{"destination":{"symbol":"X1-GZ7-D4"},"arrival":"2024-03-01T12:05:00.000Z"}}}}`)

		case strings.HasSuffix(req.URL.Path, "/extract"):
			capacity := s.extractCapacity
			if capacity == 0 {
				capacity = 40
			}
			fmt.Fprintf(rw, `{"data":{"cooldown":{"shipSymbol":"HULK-1","totalSeconds":70,"remainingSeconds":70,"expiration":"2024-03-01T12:01:10.000Z"},"extraction":{"shipSymbol":"HULK-1","yield":{"symbol":"IRON_ORE","units":8}},"cargo":{"capacity":%d,"units":8,"inventory":[{"symbol":"IRON_ORE","units":8}]}}}`, capacity)

		default:
			t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
			rw.WriteHeader(http.StatusNotFound)
		}
	})
}

func testClient(baseURL string, clock shared.Clock) *api.Client {
	cfg := &config.APIConfig{
		BaseURL: baseURL,
		RateLimit: config.RateLimitConfig{
			PerSecond: 100, PerMinute: 6000, Burst: 100,
		},
		Timeout: 5 * time.Second,
		Retry:   config.RetryConfig{Total: 1, Connect: 1, Read: 1, Status: 1, BackoffFactor: 0.01},
	}
	return api.NewClient(cfg, "test-token", clock)
}

func executorWorld(baseURL string, clock shared.Clock) (*warehouse.Warehouse, *Executor) {
	w := worldWithMarkets()
	client := testClient(baseURL, clock)
	nav := navigation.NewNavigator(client, w, clock)
	trader := trading.NewTrader(client, w, nav, nil, nil, clock)
	return w, NewExecutor(w, nav, trader, clock)
}

func TestExecutorNavigateToMineFallsBackToDrift(t *testing.T) {
	server := &shipServer{flightMode: fleet.FlightModeDrift, cruiseErr: api.CodeInsufficientFuel}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld(ts.URL, clock)
	w.UpsertShip(excavatorShip("HULK-1", 0, 40))

	err := executor.Execute(context.Background(), "HULK-1", ActionNavigateToMine)
	require.NoError(t, err)

	// CRUISE rejected for fuel, DRIFT accepted
	assert.Equal(t, []string{"CRUISE", "DRIFT"}, server.navigations)

	rt := w.Runtime("HULK-1")
	assert.Equal(t, fleet.StateNavigating, rt.State)
	assert.Equal(t, fleet.DestinationMine, rt.Destination)
	assert.Equal(t, "X1-GZ7-D4", rt.MineTarget)
	assert.Equal(t, "2024-03-01T12:05:00.000Z", rt.NextWakeup)

	ship := w.Ship("HULK-1")
	assert.Equal(t, fleet.NavStatusInTransit, ship.Nav.Status)
	assert.Equal(t, 20, ship.Fuel.Current)
}

func TestExecutorNavigateToMineCruisesWhenFuelSuffices(t *testing.T) {
	server := &shipServer{flightMode: fleet.FlightModeDrift}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld(ts.URL, clock)
	w.UpsertShip(excavatorShip("HULK-1", 0, 40))

	err := executor.Execute(context.Background(), "HULK-1", ActionNavigateToMine)
	require.NoError(t, err)

	assert.Equal(t, []string{"CRUISE"}, server.navigations)
	assert.Equal(t, "X1-GZ7-D4", w.Runtime("HULK-1").MineTarget)
}

func TestExecutorNavigateToMineOnDepositExtractsNextTick(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld("http://unused.invalid", clock)
	ship := excavatorShip("HULK-1", 0, 40)
	ship.Nav.WaypointSymbol = "X1-GZ7-D4"
	w.UpsertShip(ship)

	err := executor.Execute(context.Background(), "HULK-1", ActionNavigateToMine)
	require.NoError(t, err)

	rt := w.Runtime("HULK-1")
	assert.Equal(t, fleet.StateNavigating, rt.State)
	assert.Equal(t, "X1-GZ7-D4", rt.MineTarget)

	d := NewDispatcher(w, clock)
	assert.Equal(t, ActionExtract, d.Decide("HULK-1"))
}

// arrivedShipJSON is the poll response for HULK-1 once its transit to the
// D4 deposit has completed
const arrivedShipJSON = `{"data":{"symbol":"HULK-1","registration":{"role":"EXCAVATOR"},"nav":{"systemSymbol":"X1-GZ7","waypointSymbol":"X1-GZ7-D4","status":"IN_ORBIT","flightMode":"CRUISE"},"fuel":{"current":20,"capacity":100},"cargo":{"capacity":40,"units":0}}}`

func TestExecutorAwaitArrivalRefreshesShipForExtraction(t *testing.T) {
	server := &shipServer{flightMode: fleet.FlightModeDrift, shipJSON: arrivedShipJSON}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld(ts.URL, clock)
	w.UpsertShip(excavatorShip("HULK-1", 0, 40))

	require.NoError(t, executor.Execute(context.Background(), "HULK-1", ActionNavigateToMine))
	rt := w.Runtime("HULK-1")
	require.Equal(t, fleet.NavStatusInTransit, w.Ship("HULK-1").Nav.Status)
	require.Equal(t, "2024-03-01T12:05:00.000Z", rt.NextWakeup)

	// Woken well past the ETA with the cached transit still pending
	clock.SetTime(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
	d := NewDispatcher(w, clock)
	require.Equal(t, ActionAwaitArrival, d.Decide("HULK-1"))

	require.NoError(t, executor.Execute(context.Background(), "HULK-1", ActionAwaitArrival))

	ship := w.Ship("HULK-1")
	assert.Equal(t, fleet.NavStatusInOrbit, ship.Nav.Status)
	assert.Equal(t, "X1-GZ7-D4", ship.Nav.WaypointSymbol)
	assert.Empty(t, rt.NextWakeup)
	assert.Equal(t, fleet.StateNavigating, rt.State)

	// The refreshed ship extracts on the next tick
	assert.Equal(t, ActionExtract, d.Decide("HULK-1"))
}

func TestExecutorMarketArrivalRecordsAndSettlesIdle(t *testing.T) {
	server := &shipServer{}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld(ts.URL, clock)
	probe := probeShip("PROBE-1")
	probe.Nav.WaypointSymbol = "X1-GZ7-B2"
	w.UpsertShip(probe)
	rt := w.Runtime("PROBE-1")
	rt.BeginNavigation(fleet.DestinationMarket)
	rt.TargetMarket = "X1-GZ7-B2"

	d := NewDispatcher(w, clock)
	require.Equal(t, ActionProbeMarket, d.Decide("PROBE-1"))
	require.NoError(t, executor.Execute(context.Background(), "PROBE-1", ActionProbeMarket))

	assert.Equal(t, fleet.StateIdle, rt.State)
	assert.Empty(t, rt.TargetMarket)
	snapshot := w.MarketSnapshot("X1-GZ7-B2")
	require.NotNil(t, snapshot)
	assert.True(t, snapshot.SellsFuel())
}

func TestExecutorNavigateToMineUnknownWaypoint(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld("http://unused.invalid", clock)
	ship := excavatorShip("HULK-1", 0, 40)
	ship.Nav.WaypointSymbol = "X1-GZ7-Z9"
	w.UpsertShip(ship)

	err := executor.Execute(context.Background(), "HULK-1", ActionNavigateToMine)

	var unknownErr *shared.UnknownWaypointError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "X1-GZ7-Z9", unknownErr.WaypointSymbol)
	assert.NotEmpty(t, w.Runtime("HULK-1").NextWakeup)
}

func TestExecutorProbeMarketCancelledContextIsFatal(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld("http://unused.invalid", clock)
	w.UpsertShip(probeShip("PROBE-1"))
	w.Runtime("PROBE-1").TargetMarket = "X1-GZ7-B2"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := executor.Execute(ctx, "PROBE-1", ActionProbeMarket)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutorExtractAppliesCooldownAndCargo(t *testing.T) {
	server := &shipServer{flightMode: fleet.FlightModeCruise}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld(ts.URL, clock)
	ship := excavatorShip("HULK-1", 0, 40)
	ship.Nav.WaypointSymbol = "X1-GZ7-D4"
	w.UpsertShip(ship)

	err := executor.Execute(context.Background(), "HULK-1", ActionExtract)
	require.NoError(t, err)

	rt := w.Runtime("HULK-1")
	assert.Equal(t, fleet.StateMining, rt.State)
	assert.Equal(t, "2024-03-01T12:01:10.000Z", rt.NextWakeup)
	assert.Equal(t, 8, w.Ship("HULK-1").Cargo.Units)
}

func TestExecutorExtractFillingHoldSettlesIdle(t *testing.T) {
	server := &shipServer{flightMode: fleet.FlightModeCruise, extractCapacity: 8}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, executor := executorWorld(ts.URL, clock)
	ship := excavatorShip("HULK-1", 0, 8) // extract response fills the hold
	ship.Nav.WaypointSymbol = "X1-GZ7-D4"
	w.UpsertShip(ship)

	err := executor.Execute(context.Background(), "HULK-1", ActionExtract)
	require.NoError(t, err)

	assert.Equal(t, fleet.StateIdle, w.Runtime("HULK-1").State)
}
