package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsSource - источник накопительных счетчиков уведомлений
// (storage.EraseNotifier и подобные).
type StatsSource interface {
	Stats() (published, received, errors int64)
}

// MetricsExporter периодически переносит счетчики StatsSource в Prometheus.
type MetricsExporter struct {
	source StatsSource
	every  time.Duration
	quit   chan struct{}
	done   chan struct{}

	published prometheus.Counter
	received  prometheus.Counter
	failed    prometheus.Counter
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg
func NewMetricsExporter(reg prometheus.Registerer, source StatsSource, every time.Duration) *MetricsExporter {
	if every <= 0 {
		every = time.Second
	}
	me := &MetricsExporter{
		source: source,
		every:  every,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "erase_notifier",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных уведомлений об удалении.",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "erase_notifier",
			Name:      "messages_received_total",
			Help:      "Общее число полученных уведомлений об удалении.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "erase_notifier",
			Name:      "errors_total",
			Help:      "Ошибки публикации и обработки уведомлений.",
		}),
	}
	if reg != nil {
		reg.MustRegister(me.published, me.received, me.failed)
	}
	return me
}

// Start запускает фоновое обновление метрик
func (m *MetricsExporter) Start() {
	go m.loop()
}

// Stop останавливает обновление и переносит последние значения
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()
	defer close(m.done)

	// Counter только растет, поэтому храним прошлые значения и добавляем дельту
	var prev [3]int64
	collect := func() {
		pub, recv, errs := m.source.Stats()
		cur := [3]int64{pub, recv, errs}
		counters := [3]prometheus.Counter{m.published, m.received, m.failed}
		for i := range cur {
			if d := cur[i] - prev[i]; d > 0 {
				counters[i].Add(float64(d))
			}
		}
		prev = cur
	}

	for {
		select {
		case <-ticker.C:
			collect()
		case <-m.quit:
			collect()
			return
		}
	}
}

// MetricsServer - HTTP-эндпоинт /metrics
type MetricsServer struct {
	srv *http.Server
}

// StartMetricsServer запускает HTTP-сервер Prometheus на addr (например, ":2112").
// Метод неблокирующий: сервер работает в отдельной горутине.
func StartMetricsServer(addr string, gatherer prometheus.Gatherer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return &MetricsServer{srv: srv}
}

// Shutdown останавливает HTTP-сервер
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
