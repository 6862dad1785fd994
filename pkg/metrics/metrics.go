// Package metrics Prometheus指标
// 指标在包初始化时注册到默认Registry，通过 GET /metrics 暴露
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookworld"

// 失败原因标签
const (
	ReasonDuplicate    = "duplicate"
	ReasonNotFound     = "book_not_found"
	ReasonStock        = "insufficient_stock"
	ReasonConflict     = "conflict"
	ReasonInvalid      = "invalid"
	ReasonInfra        = "infrastructure"
	resultSuccess      = "success"
	resultFailure      = "failure"
	resultRejected     = "rejected"
	breakerStateClosed = 0
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP请求总数",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP请求耗时（秒）",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "path"})

	HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_progress",
		Help:      "正在处理的HTTP请求数",
	})

	// 下单
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "下单成功总数",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_failed_total",
		Help:      "下单失败总数（按原因）",
	}, []string{"reason"})

	OrderCreationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_creation_duration_seconds",
		Help:      "下单耗时（秒）",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	OrdersInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_in_progress",
		Help:      "正在处理的下单请求数",
	})

	BooksLowStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_low_stock_total",
		Help:      "下单后库存低于阈值的图书次数",
	})

	// 熔断器
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
	}, []string{"name"})

	CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_requests_total",
		Help:      "熔断器请求总数",
	}, []string{"name", "result"})

	// Saga
	SagaExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saga_executions_total",
		Help:      "Saga执行总数",
	}, []string{"saga", "result"})

	SagaExecutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "saga_execution_duration_seconds",
		Help:      "Saga执行耗时（秒）",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30},
	}, []string{"saga"})

	SagaCompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saga_compensations_total",
		Help:      "Saga补偿执行总数",
	}, []string{"saga"})

	// 消息
	MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_published_total",
		Help:      "消息发布总数",
	}, []string{"exchange", "routing_key", "result"})

	MessagesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_consumed_total",
		Help:      "消息消费总数",
	}, []string{"queue", "result"})

	MessageProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_processing_duration_seconds",
		Help:      "消息处理耗时（秒）",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
	})

	// 快递
	CourierSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "courier_sync_total",
		Help:      "快递状态同步次数",
	}, []string{"result"})
)

// ObserveOrder 记录一次下单结果，reason为空表示成功
func ObserveOrder(reason string, d time.Duration) {
	OrderCreationDuration.Observe(d.Seconds())
	if reason == "" {
		OrdersCreatedTotal.Inc()
		return
	}
	OrdersFailedTotal.WithLabelValues(reason).Inc()
}

// ObserveSaga 记录一次Saga执行
func ObserveSaga(name string, ok bool, d time.Duration) {
	SagaExecutionDuration.WithLabelValues(name).Observe(d.Seconds())
	SagaExecutionsTotal.WithLabelValues(name, result(ok)).Inc()
}

// ObserveBreaker 记录熔断器保护下的一次调用
func ObserveBreaker(name string, err error, rejected bool) {
	switch {
	case rejected:
		CircuitBreakerRequests.WithLabelValues(name, resultRejected).Inc()
	case err != nil:
		CircuitBreakerRequests.WithLabelValues(name, resultFailure).Inc()
	default:
		CircuitBreakerRequests.WithLabelValues(name, resultSuccess).Inc()
	}
}

// SetBreakerState 上报熔断器状态（与circuitbreaker.State的取值一致）
func SetBreakerState(name string, state int) {
	if state < breakerStateClosed {
		state = breakerStateClosed
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// ObservePublish 记录一次消息发布
func ObservePublish(exchange, routingKey string, err error) {
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result(err == nil)).Inc()
}

// ObserveConsume 记录一次消息消费
func ObserveConsume(queue string, err error, d time.Duration) {
	MessageProcessingDuration.Observe(d.Seconds())
	MessagesConsumedTotal.WithLabelValues(queue, result(err == nil)).Inc()
}

func result(ok bool) string {
	if ok {
		return resultSuccess
	}
	return resultFailure
}
