package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts path searches by result ("found" or "unreachable").
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathfinder_search_total",
		Help: "Total path searches by result",
	}, []string{"result"})

	// searchDuration tracks how long a single A* run takes.
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathfinder_search_duration_seconds",
		Help:    "Path search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
	})

	// searchExpanded tracks how many cells a search expanded.
	searchExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathfinder_search_expanded_nodes",
		Help:    "Number of cells expanded per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// pathCacheTotal counts path cache lookups by outcome ("hit", "miss" or "error").
	pathCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathfinder_path_cache_total",
		Help: "Total path cache lookups by outcome",
	}, []string{"outcome"})

	// gridEdits counts grid edits by kind.
	gridEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathfinder_grid_edits_total",
		Help: "Total grid edits by kind",
	}, []string{"kind"})
)
