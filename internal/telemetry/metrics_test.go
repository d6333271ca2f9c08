package telemetry

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartMetricsServer_Serves(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "numbench_test_gauge", Help: "test"})
	reg.MustRegister(g)
	g.Set(3)

	const addr = "127.0.0.1:39217"
	srv, err := StartMetricsServer(addr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err != nil {
		t.Skipf("cannot bind %s: %v", addr, err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "numbench_test_gauge 3")
}

func TestStartMetricsServer_BadAddr(t *testing.T) {
	_, err := StartMetricsServer("not-an-address", http.NotFoundHandler())
	assert.Error(t, err)
}
