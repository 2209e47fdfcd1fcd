package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gogotex/gogotex/backend/user-sync"

// Tracer returns the service tracer from the global provider. It is a no-op
// until a provider is installed with otel.SetTracerProvider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
