package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики execution router'а.
//
// Label path: "inline" | "worker".
// Label outcome: "completed" | "cancelled" | "failed".
var (
	// OperationsTotal — количество операций по пути выполнения и исходу.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datalens_operations_total",
		Help: "Total executed operations by path and outcome",
	}, []string{"path", "outcome"})

	// ActiveOperations — количество операций на worker path прямо сейчас.
	ActiveOperations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "datalens_active_operations",
		Help: "Worker-path operations currently in flight",
	})

	// ChunksProcessed — количество chunks, прошедших через worker processor.
	ChunksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datalens_chunks_processed_total",
		Help: "Chunks posted to the worker processor",
	})

	// CacheHits — попадания в кэш worker processor'а.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datalens_worker_cache_hits_total",
		Help: "Worker processor chunk cache hits",
	})

	// OperationDuration — длительность операций по пути выполнения.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datalens_operation_duration_seconds",
		Help:    "Operation duration by execution path",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"path"})
)
