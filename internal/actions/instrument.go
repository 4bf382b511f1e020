// Package actions holds what every user action shares: timing, metrics
// and the in-flight gauge. The actions themselves live in subpackages.
package actions

import (
	"context"
	"time"

	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/metrics"
	"kb-chat/internal/common/observability"
	"kb-chat/internal/models"
)

// Begin marks action as in flight. Call the returned func exactly once with
// the action's outcome.
func Begin(ctx context.Context, obs *observability.Observability, action models.ActionType) func(err error) {
	name := action.String()
	start := time.Now()
	metrics.ActionsActive.WithLabelValues(name).Inc()

	return func(err error) {
		elapsed := time.Since(start)
		metrics.ActionsActive.WithLabelValues(name).Dec()
		metrics.ActionDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		status := "success"
		if err != nil {
			status = "failure"
			metrics.ActionsFailed.WithLabelValues(name, string(errors.CodeOf(err))).Inc()
		} else {
			metrics.ActionsCompleted.WithLabelValues(name).Inc()
		}
		obs.RecordAction(ctx, name, status, elapsed)
	}
}

// WithTimeout applies d to ctx when d is positive; zero means unbounded.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
