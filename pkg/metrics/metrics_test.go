package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.(prometheus.Metric).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics("test")
	first := CheckoutTotal
	InitMetrics("test")

	require.NotNil(t, first)
	assert.Same(t, first, CheckoutTotal)
}

func TestCheckoutMetrics(t *testing.T) {
	InitMetrics("test")

	before := testutil.ToFloat64(CheckoutTotal.WithLabelValues("success"))
	samples := histogramCount(t, CheckoutDuration)

	done := TrackCheckout()
	assert.Equal(t, float64(1), testutil.ToFloat64(CheckoutsInProgress))
	ObserveCheckout("success", 30*time.Millisecond)
	done()

	assert.Equal(t, before+1, testutil.ToFloat64(CheckoutTotal.WithLabelValues("success")))
	assert.Equal(t, samples+1, histogramCount(t, CheckoutDuration))
	assert.Equal(t, float64(0), testutil.ToFloat64(CheckoutsInProgress))

	conflicts := testutil.ToFloat64(StockReservationConflictsTotal)
	IncStockConflict()
	IncStockConflict()
	assert.Equal(t, conflicts+2, testutil.ToFloat64(StockReservationConflictsTotal))

	replays := testutil.ToFloat64(CheckoutReplaysTotal)
	IncCheckoutReplay()
	assert.Equal(t, replays+1, testutil.ToFloat64(CheckoutReplaysTotal))
}

func TestCircuitBreakerAndMessageMetrics(t *testing.T) {
	InitMetrics("test")

	SetCircuitBreakerState("redis", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("redis")))

	IncCircuitBreakerRequest("redis", "rejected")
	assert.GreaterOrEqual(t, testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("redis", "rejected")), float64(1))

	IncMessagePublished("kafka", "order.created", "success")
	assert.GreaterOrEqual(t, testutil.ToFloat64(MessagesPublishedTotal.WithLabelValues("kafka", "order.created", "success")), float64(1))
}

func TestHTTPMetrics(t *testing.T) {
	InitMetrics("test")

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders/checkout", "200"))
	ObserveHTTPRequest("POST", "/api/v1/orders/checkout", "200", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders/checkout", "200")))

	done := TrackHTTPInProgress()
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsInProgress))
	done()
}
