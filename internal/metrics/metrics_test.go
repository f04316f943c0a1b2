package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-menu-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordResponse("GET", 200, 10*time.Millisecond)
	c.RecordResponse("GET", 401, 5*time.Millisecond)
	c.RecordRefresh(true)
	c.RecordRefresh(false)
	c.RecordRefresh(false)
	c.RecordTransportError("POST")
	c.RecordNavigation("/login")

	count, err := testutil.GatherAndCount(reg, "menu_client_responses_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	expected := `
# HELP menu_client_token_refreshes_total Credential refresh calls, by outcome
# TYPE menu_client_token_refreshes_total counter
menu_client_token_refreshes_total{outcome="failure"} 2
menu_client_token_refreshes_total{outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "menu_client_token_refreshes_total"))
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.RecordNavigation("/dashboard/subscription-expired")

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `menu_client_forced_navigations_total{path="/dashboard/subscription-expired"} 1`)
}
