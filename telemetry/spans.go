package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Standard attribute keys for AggMesh spans.
var (
	AttrExecutionID = attribute.Key("aggmesh.execution.id")
	AttrPlanID      = attribute.Key("aggmesh.plan.id")
	AttrPhaseID     = attribute.Key("aggmesh.phase.id")
	AttrStrategy    = attribute.Key("aggmesh.phase.strategy")
	AttrUnitID      = attribute.Key("aggmesh.unit.id")
)

// StartSpan is a convenience wrapper that starts an internal span with common attributes.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}
