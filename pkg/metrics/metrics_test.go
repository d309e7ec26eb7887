package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("метрика %s не найдена", name)
	return nil
}

func TestObserve_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMovement("dispatch", true)
		m.ObserveBatch(3)
		m.ObserveLifecycle("RETIRED")
		m.ObserveCache("hit")
	})
}

func TestObserveMovement_CountsOutcomes(t *testing.T) {
	m := New()
	m.ObserveMovement("dispatch", true)
	m.ObserveMovement("dispatch", true)
	m.ObserveMovement("dispatch", false)

	counts := map[string]float64{}
	for _, metric := range family(t, m, "inventory_movement_outcomes_total").GetMetric() {
		var outcome string
		for _, l := range metric.GetLabel() {
			if l.GetName() == "outcome" {
				outcome = l.GetValue()
			}
		}
		counts[outcome] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"success": 2, "error": 1}, counts)
}

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/equipment/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/equipment/15", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	metrics := family(t, m, "inventory_http_requests_total").GetMetric()
	require.Len(t, metrics, 1)
	labels := map[string]string{}
	for _, l := range metrics[0].GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, map[string]string{"method": "GET", "route": "/equipment/:id", "status": "204"}, labels)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_http_requests_total")
}
