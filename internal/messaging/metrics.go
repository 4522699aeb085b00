package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sceneTasksPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_scene_tasks_published_total",
			Help: "Scene image tasks published by outcome.",
		},
		[]string{"status"},
	)
	sceneResultsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_scene_results_processed_total",
			Help: "Scene image results consumed by outcome.",
		},
		[]string{"status"}, // applied, failed, stale, malformed, error
	)
)
