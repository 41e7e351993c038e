package trading

import (
	"context"
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
	"github.com/mkarlen/starhelm/internal/application/warehouse"
	"github.com/mkarlen/starhelm/internal/domain/fleet"
	"github.com/mkarlen/starhelm/internal/domain/shared"
	"github.com/mkarlen/starhelm/internal/infrastructure/config"
)

// marketServer stubs the endpoints the sell flow touches. sellStatus and
// sellBody control the response to sell requests.
type marketServer struct {
	sellStatus int
	sellBody   string

	sellCalls int
}

func (s *marketServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/dock"):
			fmt.Fprint(rw, `{"data":{"nav":{"systemSymbol":"X1-GZ7","waypointSymbol":"X1-GZ7-B2","status":"DOCKED","flightMode":"CRUISE"}}}`)

		case strings.HasSuffix(req.URL.Path, "/orbit"):
			fmt.Fprint(rw, `{"data":{"nav":{"systemSymbol":"X1-GZ7","waypointSymbol":"X1-GZ7-B2","status":"IN_ORBIT","flightMode":"CRUISE"}}}`)

		case strings.HasSuffix(req.URL.Path, "/market"):
			fmt.Fprint(rw, `{"data":{"symbol":"X1-GZ7-B2","tradeGoods":[{"symbol":"IRON_ORE","tradeVolume":100,"supply":"ABUNDANT","purchasePrice":30,"sellPrice":42}]}}`)

		case strings.HasSuffix(req.URL.Path, "/sell"):
			s.sellCalls++
			rw.WriteHeader(s.sellStatus)
			fmt.Fprint(rw, s.sellBody)

		default:
			t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
			rw.WriteHeader(http.StatusNotFound)
		}
	})
}

func testTrader(baseURL string, clock shared.Clock) (*warehouse.Warehouse, *Trader) {
	cfg := &config.APIConfig{
		BaseURL: baseURL,
		RateLimit: config.RateLimitConfig{
			PerSecond: 100, PerMinute: 6000, Burst: 100,
		},
		Timeout: 5 * time.Second,
		Retry:   config.RetryConfig{Total: 1, Connect: 1, Read: 1, Status: 1, BackoffFactor: 0.01},
	}
	client := api.NewClient(cfg, "test-token", clock)
	w := warehouse.New(nil, clock)
	nav := navigation.NewNavigator(client, w, clock)
	return w, NewTrader(client, w, nav, nil, nil, clock)
}

func dockedExcavator() *fleet.Ship {
	return &fleet.Ship{
		Symbol:       "HULK-1",
		Registration: fleet.Registration{Role: fleet.RoleExcavator},
		Nav: fleet.Nav{
			SystemSymbol:   "X1-GZ7",
			WaypointSymbol: "X1-GZ7-B2",
			Status:         fleet.NavStatusInOrbit,
		},
		Fuel: fleet.Fuel{Current: 100, Capacity: 100},
		Cargo: fleet.Cargo{
			Capacity:  40,
			Units:     40,
			Inventory: []fleet.CargoItem{{Symbol: "IRON_ORE", Units: 40}},
		},
	}
}

func TestDockAndSellAllSkipsDeclinedGoods(t *testing.T) {
	server := &marketServer{
		sellStatus: http.StatusBadRequest,
		sellBody:   `{"error":{"code":4001,"message":"market not accepting IRON_ORE"}}`,
	}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, trader := testTrader(ts.URL, clock)
	ship := dockedExcavator()
	w.UpsertShip(ship)

	total, err := trader.DockAndSellAll(context.Background(), ship)

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 1, server.sellCalls)
	// The declined item stays aboard and the ship returns to orbit
	assert.Equal(t, 40, ship.Cargo.Units)
	assert.Equal(t, fleet.NavStatusInOrbit, ship.Nav.Status)
}

func TestDockAndSellAllAbortsOnTransportFailure(t *testing.T) {
	server := &marketServer{
		sellStatus: http.StatusInternalServerError,
		sellBody:   `{"error":{"code":500,"message":"boom"}}`,
	}
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	w, trader := testTrader(ts.URL, clock)
	ship := dockedExcavator()
	w.UpsertShip(ship)

	_, err := trader.DockAndSellAll(context.Background(), ship)

	require.Error(t, err)
	assert.Equal(t, 40, ship.Cargo.Units)
}

func TestClassifySellError(t *testing.T) {
	declined := fmt.Errorf("sell failed: %w", &api.APIError{Code: 4001, Message: "not accepting"})
	assert.Equal(t, navigation.OutcomeNotSold, classifySellError(declined).Kind)

	transport := fmt.Errorf("sell failed: %w", context.DeadlineExceeded)
	assert.Equal(t, navigation.OutcomeRetryable, classifySellError(transport).Kind)
}
