package sessionkit

import (
	"context"
	"time"

	"github.com/conectaworking/sessionkit/internal/audit"
)

func (e *Engine) metricInc(id int) {
	e.metrics.Inc(MetricID(id))
}

func (e *Engine) metricObserve(id int, d time.Duration) {
	e.metrics.Observe(MetricID(id), d)
}

// emitAudit builds and dispatches one audit event. The metadata closure
// is only invoked when audit is enabled, so disabled audit pays nothing
// for map construction.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	destination string,
	cause error,
	metadata func() map[string]string,
) {
	if e.audit == nil {
		return
	}

	event := audit.Event{
		Timestamp:   time.Now(),
		EventType:   eventType,
		UserID:      userID,
		Email:       email,
		ClientID:    clientIDFromContext(ctx),
		IP:          clientIPFromContext(ctx),
		UserAgent:   userAgentFromContext(ctx),
		Destination: destination,
		Success:     success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
