package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_NilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	require.NotNil(t, m)
	m.CustomersTotal.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CustomersTotal))
}

func TestObserveReplay(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveReplay(5, 2, 1, 3)

	expected := `
# HELP billing_calls_total Calls replayed, by outcome (billed, skipped, failed)
# TYPE billing_calls_total counter
billing_calls_total{outcome="billed"} 5
billing_calls_total{outcome="failed"} 1
billing_calls_total{outcome="skipped"} 2
`
	require.NoError(t, testutil.CollectAndCompare(m.CallsTotal, strings.NewReader(expected)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MonthsOpenedTotal))
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware(m))
	r.Get("/api/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestsTotal), "one series for both ids")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/customers/{id}", "404")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SettlementsTotal.WithLabelValues("TERM").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `billing_settlements_total{plan="TERM"} 1`)
}
