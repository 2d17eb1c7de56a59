package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snekoban_moves_total",
		Help: "Moves attempted by outcome",
	}, []string{"outcome"})

	solverRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snekoban_solver_runs_total",
		Help: "Solver runs by result (solved, unsolvable, limit_reached)",
	}, []string{"result"})

	solverExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snekoban_solver_expanded_states",
		Help:    "States expanded per solver run",
		Buckets: prometheus.ExponentialBuckets(10, 10, 7),
	})

	solverDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snekoban_solver_duration_seconds",
		Help:    "Wall time per solver run",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snekoban_active_sessions",
		Help: "Sessions currently held in memory",
	})
)
