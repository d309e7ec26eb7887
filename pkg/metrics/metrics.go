package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - счётчики сервиса. Создаётся один раз на процесс,
// в тестах регистрируется в отдельном реестре.
type Metrics struct {
	registry *prometheus.Registry

	MovementOutcomes *prometheus.CounterVec
	BatchSize        prometheus.Histogram
	LifecycleChanges *prometheus.CounterVec
	CacheEvents      *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MovementOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "movement_outcomes_total",
			Help:      "Результаты перемещений по единицам: операция и исход.",
		}, []string{"operation", "outcome"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inventory",
			Name:      "movement_batch_size",
			Help:      "Количество единиц в пакетном перемещении.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		LifecycleChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "lifecycle_changes_total",
			Help:      "Смены состояния жизненного цикла по целевому состоянию.",
		}, []string{"state"}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "cache_events_total",
			Help:      "Попадания, промахи и инвалидации кэша оборудования.",
		}, []string{"event"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "http_requests_total",
			Help:      "HTTP запросы по маршруту и статусу.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inventory",
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.MovementOutcomes,
		m.BatchSize,
		m.LifecycleChanges,
		m.CacheEvents,
		m.HTTPRequests,
		m.HTTPDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler отдаёт метрики в формате Prometheus для маршрута /metrics.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			method := c.Request().Method
			m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Методы Observe* допускают nil-получатель: метрики можно отключить конфигурацией.

func (m *Metrics) ObserveMovement(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.MovementOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
}

func (m *Metrics) ObserveLifecycle(state string) {
	if m == nil {
		return
	}
	m.LifecycleChanges.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveCache(event string) {
	if m == nil {
		return
	}
	m.CacheEvents.WithLabelValues(event).Inc()
}
