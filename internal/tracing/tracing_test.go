package tracing

import (
	"context"
	"strings"
	"testing"

	"github.com/large-farva/skywatch/internal/config"
)

func TestInitDisabledInstallsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	_, span := Tracer().Start(context.Background(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Fatal("noop provider produced a valid span context")
	}
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	cfg := config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1, ServiceName: "test"}
	_, err := Init(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported tracing exporter") {
		t.Fatalf("err = %v, want unsupported exporter", err)
	}
}

func TestShutdownWithTimeoutNil(t *testing.T) {
	ShutdownWithTimeout(context.Background(), nil, nil)
}
