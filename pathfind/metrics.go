package pathfind

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeLabel = "outcome"
	opLabel      = "op"

	outcomeFound       = "found"
	outcomeUnreachable = "unreachable"
	outcomeLimit       = "limit"

	opAdd    = "add"
	opRemove = "remove"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadstar_searches_total",
		Help: "The number of completed path searches.",
	}, []string{outcomeLabel})

	searchExpansions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadstar_search_expansions",
		Help:    "The number of nodes expanded per path search.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	obstacleUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadstar_obstacle_updates_total",
		Help: "The number of obstacle map mutations.",
	}, []string{opLabel})
)

func instrumentSearch(outcome string, expanded int) {
	searchesTotal.
		With(prometheus.Labels{outcomeLabel: outcome}).
		Inc()
	searchExpansions.Observe(float64(expanded))
}

func instrumentObstacleUpdate(op string) {
	obstacleUpdatesTotal.
		With(prometheus.Labels{opLabel: op}).
		Inc()
}
