package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	// InitMetrics uses sync.Once, so we test the state after initialization
	InitMetrics()

	assert.True(t, IsMetricsRegistered())
	assert.NotNil(t, GetDispatchTotal())
	assert.NotNil(t, GetResolutionTotal())
	assert.NotNil(t, GetExecuteDuration())
}

// counterValue reads a counter from the default registry.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if labels[label.GetName()] != label.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordDispatch(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"provider": "azure", "outcome": OutcomeSuccess}
	before := counterValue(t, "cckmops_dispatch_total", labels)
	RecordDispatch("azure", OutcomeSuccess)
	after := counterValue(t, "cckmops_dispatch_total", labels)

	assert.Equal(t, before+1, after)
}

func TestRecordResolution(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"provider": "aws", "outcome": OutcomeResolved}
	before := counterValue(t, "cckmops_resolution_total", labels)
	RecordResolution("aws", OutcomeResolved)
	RecordResolution("aws", OutcomeResolved)
	after := counterValue(t, "cckmops_resolution_total", labels)

	assert.Equal(t, before+2, after)
}

func TestObserveExecute(t *testing.T) {
	InitMetrics()

	// Verify no panic and histogram exists
	ObserveExecute("gcp", 0.25)
	assert.NotNil(t, GetExecuteDuration())
}

func TestDefaultServerConfig(t *testing.T) {
	t.Parallel()

	config := DefaultServerConfig()
	assert.False(t, config.Enabled)
	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, "/metrics", config.Path)
}

func TestServer_StartDisabled(t *testing.T) {
	t.Parallel()

	server := NewServer(DefaultServerConfig(), nil)

	err := server.Start()
	assert.NoError(t, err)
	assert.Empty(t, server.Addr())
	assert.NoError(t, server.Stop(context.Background()))
}

func TestServer_Handler(t *testing.T) {
	InitMetrics()
	RecordDispatch("oci", OutcomeError)

	server := NewServer(DefaultServerConfig(), nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "cckmops_dispatch_total"))

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = health.Body.Close() }()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
