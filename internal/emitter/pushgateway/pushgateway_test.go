package pushgateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/tilt"
)

type gateway struct {
	mu     sync.Mutex
	method string
	path   string
	body   string
	pushes int
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.method, g.path, g.body = r.Method, r.URL.Path, string(b)
	g.pushes++
	w.WriteHeader(http.StatusOK)
}

func baseOptions(addr string) map[string]any {
	return map[string]any{
		"address":            addr,
		"temp_gauge_name":    "tilt_temperature",
		"gravity_gauge_name": "tilt_gravity",
	}
}

func TestEmitPushes(t *testing.T) {
	gw := &gateway{}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	e, err := New("pgw", baseOptions(srv.URL))
	require.NoError(t, err)
	p := e.(*Pushgateway)

	require.NoError(t, p.Emit(context.Background(), tilt.Reading{Color: tilt.Orange, Temperature: 66, Gravity: 1.02}))

	assert.Equal(t, http.MethodPut, gw.method)
	assert.Equal(t, "/metrics/job/tilted", gw.path)
	assert.Contains(t, gw.body, "tilt_temperature")
	assert.Contains(t, gw.body, "tilt_gravity")
	assert.Contains(t, gw.body, "orange")

	assert.Equal(t, 66.0, testutil.ToFloat64(p.temperature.WithLabelValues("orange")))
	assert.Equal(t, 1.02, testutil.ToFloat64(p.gravity.WithLabelValues("orange")))
}

func TestEmitRateGate(t *testing.T) {
	gw := &gateway{}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	opts := baseOptions(srv.URL)
	opts["min-interval"] = "10m"
	e, err := New("pgw", opts)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	p := e.(*Pushgateway).WithClock(func() time.Time { return now })

	r := tilt.Reading{Color: tilt.Black, Temperature: 70, Gravity: 1.01}
	require.NoError(t, p.Emit(context.Background(), r))
	require.NoError(t, p.Emit(context.Background(), r))
	assert.Equal(t, 1, gw.pushes)

	now = now.Add(11 * time.Minute)
	require.NoError(t, p.Emit(context.Background(), r))
	assert.Equal(t, 2, gw.pushes)
}

func TestEmitGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := New("pgw", baseOptions(srv.URL))
	require.NoError(t, err)
	assert.Error(t, e.Emit(context.Background(), tilt.Reading{Color: tilt.Red}))
}

func TestNewValidation(t *testing.T) {
	for _, key := range []string{"address", "temp_gauge_name", "gravity_gauge_name"} {
		opts := baseOptions("localhost:9091")
		delete(opts, key)
		_, err := New("pgw", opts)
		assert.Error(t, err, key)
	}

	opts := baseOptions("localhost:9091")
	opts["temp_gauge_name"] = "not a metric"
	_, err := New("pgw", opts)
	assert.Error(t, err)

	opts = baseOptions("localhost:9091")
	opts["gravity_gauge_name"] = opts["temp_gauge_name"]
	_, err = New("pgw", opts)
	assert.Error(t, err, "duplicate gauge names")

	opts = baseOptions("localhost:9091")
	opts["job"] = "brewery"
	_, err = New("pgw", opts)
	assert.ErrorIs(t, err, emitter.ErrInvalidOptions)
}
