package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersUpdateCollectors(t *testing.T) {
	before := testutil.ToFloat64(estimatesComputed.WithLabelValues("work"))
	RecordEstimate("work")
	assert.Equal(t, before+1, testutil.ToFloat64(estimatesComputed.WithLabelValues("work")))

	RecordImportItems("skipped", 0)
	RecordImportItems("upserted", 3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(importItems.WithLabelValues("upserted")), 3.0)

	done := RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(httpInFlight))
	done("get", "/api/catalog/services", http.StatusOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/catalog/services", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordOrder(420)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jamb_orders_placed_total")
}
