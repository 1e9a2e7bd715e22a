package telemetry

import (
	"slices"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupPropagation(t *testing.T) {
	orig := otel.GetTextMapPropagator()
	defer otel.SetTextMapPropagator(orig)

	SetupPropagation()

	fields := otel.GetTextMapPropagator().Fields()
	for _, want := range []string{"traceparent", "baggage", "X-Amzn-Trace-Id"} {
		if !slices.Contains(fields, want) {
			t.Errorf("expected propagator to handle %q, got fields: %v", want, fields)
		}
	}
}

func TestNewTracerProvider(t *testing.T) {
	tp, err := NewTracerProvider(t.Context(), "http://localhost:0/v1/traces", "clubsafe-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = tp.Shutdown(t.Context()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
