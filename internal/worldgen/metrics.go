package worldgen

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики генератора
type Metrics struct {
	PageIns           *prometheus.CounterVec
	PageOuts          prometheus.Counter
	PersistErrors     *prometheus.CounterVec
	TreesPlaced       prometheus.Counter
	TreesSkipped      *prometheus.CounterVec
	GenerationSeconds prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil - без регистрации)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PageIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldgen",
			Name:      "page_in_total",
			Help:      "Запросы PageIn по результату (generated, loaded, rejected).",
		}, []string{"result"}),
		PageOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldgen",
			Name:      "page_out_total",
			Help:      "Общее число выгруженных чанков.",
		}),
		PersistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldgen",
			Name:      "persist_errors_total",
			Help:      "Ошибки хранилища по операции (load, save, erase).",
		}, []string{"op"}),
		TreesPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldgen",
			Name:      "trees_placed_total",
			Help:      "Деревья, хотя бы частично попавшие в сгенерированные чанки.",
		}),
		TreesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldgen",
			Name:      "trees_skipped_total",
			Help:      "Пропущенные позиции деревьев по причине.",
		}, []string{"reason"}),
		GenerationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "worldgen",
			Name:      "generation_seconds",
			Help:      "Время генерации одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.PageIns, m.PageOuts, m.PersistErrors, m.TreesPlaced, m.TreesSkipped, m.GenerationSeconds)
	}
	return m
}

// Причины пропуска дерева
const (
	skipNotResident = "not_resident"
	skipNoFloor     = "no_floor"
	skipNoPrefab    = "no_prefab"
	skipCity        = "city"
)
