package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/youruser/pokedeck/internal/config"
	"github.com/youruser/pokedeck/internal/logger"
)

func TestInitTracingDisabled(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown := InitTracing(context.Background(), logger.Nop(), config.OTelConfig{}, "test")
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatal("disabled tracing must not replace the global provider")
	}
}

func TestInitTracingStdout(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	shutdown := InitTracing(context.Background(), logger.Nop(), config.OTelConfig{
		Enabled:     true,
		ServiceName: "pokedeck-test",
		SampleRatio: 0,
	}, "test")
	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
