package taskapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCreateRequestMetricsLogRecordsSpan(t *testing.T) {
	logger, hook := test.NewNullLogger()

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newCreateRequestMetrics(context.Background(), logger)
	metrics.start = metrics.start.Add(-50 * time.Millisecond)
	metrics.ObserveAuth(10 * time.Millisecond)
	metrics.ObserveOwnership(5 * time.Millisecond)
	metrics.ObserveInsert(15 * time.Millisecond)
	metrics.SetAssigneeRequested(true)

	metrics.Log(http.StatusCreated, nil)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a metrics log entry")
	}
	if entry.Message != "tasks.create.metrics" {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	if entry.Data["route"] != "/api/tasks" {
		t.Fatalf("unexpected route: %#v", entry.Data["route"])
	}
	if entry.Data["assignee_requested"] != true {
		t.Fatalf("expected assignee_requested true")
	}
	if total, ok := entry.Data["total_ms"].(float64); !ok || total == 0 {
		t.Fatalf("expected total_ms to be set, got %#v", entry.Data["total_ms"])
	}
	if _, exists := entry.Data["error_stage"]; exists {
		t.Fatalf("unexpected error_stage on success: %#v", entry.Data["error_stage"])
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "tasks.create" {
		t.Fatalf("unexpected span name: %s", span.Name)
	}
	spanAttrs := attributesToMap(span.Attributes)
	if code, ok := spanAttrs["http.status_code"].(int64); !ok || code != int64(http.StatusCreated) {
		t.Fatalf("unexpected http.status_code on span: %#v", spanAttrs["http.status_code"])
	}
	if stage, exists := spanAttrs["error.stage"]; exists {
		t.Fatalf("unexpected error.stage on success: %#v", stage)
	}
}

func TestCreateRequestMetricsLogRecordsErrorStage(t *testing.T) {
	logger, hook := test.NewNullLogger()

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newCreateRequestMetrics(context.Background(), logger)
	metrics.SetErrorStage("insert")
	boom := errors.New("insert failed")

	metrics.Log(http.StatusInternalServerError, boom)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a metrics log entry")
	}
	if entry.Data["error_stage"] != "insert" {
		t.Fatalf("unexpected error_stage: %#v", entry.Data["error_stage"])
	}
	if entry.Data["error"] != boom.Error() {
		t.Fatalf("unexpected error field: %#v", entry.Data["error"])
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	spanAttrs := attributesToMap(spans[0].Attributes)
	if code, ok := spanAttrs["http.status_code"].(int64); !ok || code != int64(http.StatusInternalServerError) {
		t.Fatalf("unexpected http.status_code on span: %#v", spanAttrs["http.status_code"])
	}
	if spanAttrs["error.stage"] != "insert" {
		t.Fatalf("unexpected error.stage on span: %#v", spanAttrs["error.stage"])
	}
}

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
		otel.SetTracerProvider(prev)
	}
	return tp, exporter, cleanup
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}
