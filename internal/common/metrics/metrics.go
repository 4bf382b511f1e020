// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbchat_actions_completed_total",
			Help: "Total number of chat actions that completed",
		},
		[]string{"action"},
	)

	ActionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbchat_actions_failed_total",
			Help: "Total number of chat actions that failed",
		},
		[]string{"action", "error_code"},
	)

	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "kbchat_action_duration_seconds",
			Help: "Duration of chat actions in seconds",
		},
		[]string{"action"},
	)

	ActionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kbchat_actions_active",
			Help: "Number of in-flight requests per action",
		},
		[]string{"action"},
	)

	SourcesAnnotated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbchat_sources_annotated_total",
			Help: "Unique sources shown with answers, split by whether a KB id was found",
		},
		[]string{"kb_linked"},
	)
)
