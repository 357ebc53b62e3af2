package taskapi

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// createRequestMetrics records per-stage timings of one task-creation request
// and emits them as a single structured log line when the request finishes.
type createRequestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time

	authDuration      time.Duration
	ownershipDuration time.Duration
	resolveDuration   time.Duration
	insertDuration    time.Duration
	assigneeRequested bool
	errorStage        string
}

func newCreateRequestMetrics(ctx context.Context, logger *log.Logger) (*createRequestMetrics, context.Context) {
	m := &createRequestMetrics{logger: logger, start: time.Now()}
	spanCtx, span := otel.Tracer("taskapi").Start(ctx, "tasks.create")
	m.span = span
	return m, spanCtx
}

func (m *createRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *createRequestMetrics) ObserveOwnership(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.ownershipDuration = duration
}

func (m *createRequestMetrics) ObserveResolve(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.resolveDuration = duration
}

func (m *createRequestMetrics) ObserveInsert(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.insertDuration = duration
}

func (m *createRequestMetrics) SetAssigneeRequested(requested bool) {
	m.assigneeRequested = requested
}

func (m *createRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *createRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":              "/api/tasks",
		"status":             status,
		"total_ms":           durationToMillis(time.Since(m.start)),
		"assignee_requested": m.assigneeRequested,
	}

	if m.authDuration > 0 {
		fields["auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.ownershipDuration > 0 {
		fields["ownership_ms"] = durationToMillis(m.ownershipDuration)
	}
	if m.resolveDuration > 0 {
		fields["resolve_ms"] = durationToMillis(m.resolveDuration)
	}
	if m.insertDuration > 0 {
		fields["insert_ms"] = durationToMillis(m.insertDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("tasks.create.metrics")

	if m.span != nil {
		m.span.SetAttributes(attribute.Int("http.status_code", status))
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("error.stage", m.errorStage))
		}
		m.span.End()
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
