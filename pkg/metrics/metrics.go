// Package metrics Prometheus指标
//
// 指标在InitMetrics中注册到默认Registry，由/metrics暴露。
// 所有记录函数在InitMetrics之前调用都是no-op，单元测试不需要初始化指标。
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// 下单
	CheckoutTotal                  *prometheus.CounterVec
	CheckoutDuration               prometheus.Histogram
	CheckoutsInProgress            prometheus.Gauge
	CheckoutReplaysTotal           prometheus.Counter
	StockReservationConflictsTotal prometheus.Counter

	// 熔断器
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga
	SagaExecutionsTotal    *prometheus.CounterVec
	SagaExecutionDuration  prometheus.Histogram
	SagaCompensationsTotal prometheus.Counter

	// 消息
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册全部指标，重复调用只生效一次
func InitMetrics(namespace string) {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"})

		HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时(秒)",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		}, []string{"method", "path"})

		HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		})

		CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "下单次数，result为success/replay或错误类别",
		}, []string{"result"})

		CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "下单耗时(秒)",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		})

		CheckoutsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "checkouts_in_progress",
			Help:      "正在处理的下单请求数",
		})

		CheckoutReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_replays_total",
			Help:      "命中幂等记录、直接返回已有订单的次数",
		})

		StockReservationConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reservation_conflicts_total",
			Help:      "库存乐观锁版本冲突次数",
		})

		CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		}, []string{"name"})

		CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求数，result为success/failure/rejected",
		}, []string{"name", "result"})

		SagaExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_executions_total",
			Help:      "Saga执行次数",
		}, []string{"result"})

		SagaExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "saga_execution_duration_seconds",
			Help:      "Saga执行耗时(秒)",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		})

		SagaCompensationsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_compensations_total",
			Help:      "Saga补偿步骤执行次数",
		})

		MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "事件发布次数",
		}, []string{"transport", "topic", "result"})
	})
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	if HTTPRequestsTotal == nil {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// TrackHTTPInProgress 进行中的HTTP请求+1，返回的函数-1
func TrackHTTPInProgress() func() {
	return track(HTTPRequestsInProgress)
}

// TrackCheckout 进行中的下单+1，返回的函数-1
func TrackCheckout() func() {
	return track(CheckoutsInProgress)
}

// ObserveCheckout 记录一次下单的结果和耗时
func ObserveCheckout(result string, elapsed time.Duration) {
	if CheckoutTotal == nil {
		return
	}
	CheckoutTotal.WithLabelValues(result).Inc()
	CheckoutDuration.Observe(elapsed.Seconds())
}

// IncCheckoutReplay 幂等回放
func IncCheckoutReplay() {
	inc(CheckoutReplaysTotal)
}

// IncStockConflict 库存版本冲突
func IncStockConflict() {
	inc(StockReservationConflictsTotal)
}

// SetCircuitBreakerState 记录熔断器状态
func SetCircuitBreakerState(name string, state int) {
	if CircuitBreakerState == nil {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// IncCircuitBreakerRequest result: success/failure/rejected
func IncCircuitBreakerRequest(name, result string) {
	if CircuitBreakerRequests == nil {
		return
	}
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// ObserveSaga 记录一次Saga执行
func ObserveSaga(result string, elapsed time.Duration) {
	if SagaExecutionsTotal == nil {
		return
	}
	SagaExecutionsTotal.WithLabelValues(result).Inc()
	SagaExecutionDuration.Observe(elapsed.Seconds())
}

// IncSagaCompensation 执行了一个补偿步骤
func IncSagaCompensation() {
	inc(SagaCompensationsTotal)
}

// IncMessagePublished 记录一次事件发布
func IncMessagePublished(transport, topic, result string) {
	if MessagesPublishedTotal == nil {
		return
	}
	MessagesPublishedTotal.WithLabelValues(transport, topic, result).Inc()
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

func track(g prometheus.Gauge) func() {
	if g == nil {
		return func() {}
	}
	g.Inc()
	return g.Dec
}
