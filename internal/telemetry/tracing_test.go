package telemetry_test

import (
	"context"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig(ratio float64) *config.Config {
	return &config.Config{
		Env:  "test",
		Otel: config.Otel{ServiceName: "storefront-test", SamplerRatio: ratio},
	}
}

func TestNewTracerProvider(t *testing.T) {
	t.Run("Spans carry the service name", func(t *testing.T) {
		// Arrange
		exporter := tracetest.NewInMemoryExporter()
		tp := telemetry.NewTracerProvider(testConfig(1), exporter)

		// Act
		_, span := tp.Tracer("test").Start(context.Background(), "checkout")
		span.End()
		require.NoError(t, tp.ForceFlush(context.Background()))

		// Assert
		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "checkout", spans[0].Name)

		found := false
		for _, attr := range spans[0].Resource.Attributes() {
			if attr.Key == "service.name" {
				found = true
				assert.Equal(t, "storefront-test", attr.Value.AsString())
			}
		}
		assert.True(t, found)

		require.NoError(t, tp.Shutdown(context.Background()))
	})

	t.Run("Zero ratio drops root spans", func(t *testing.T) {
		// Arrange
		exporter := tracetest.NewInMemoryExporter()
		tp := telemetry.NewTracerProvider(testConfig(0), exporter)

		// Act
		_, span := tp.Tracer("test").Start(context.Background(), "checkout")
		span.End()
		require.NoError(t, tp.ForceFlush(context.Background()))

		// Assert
		assert.Empty(t, exporter.GetSpans())
		require.NoError(t, tp.Shutdown(context.Background()))
	})
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), testConfig(1))

	require.NoError(t, err)
	assert.NotNil(t, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}
