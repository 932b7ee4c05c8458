package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})

	require.NoError(t, err)
	assert.NotNil(t, p.Tracer)
	assert.NotNil(t, p.Meter)
	assert.Nil(t, p.TracerProvider)

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestFromProvider(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	tel, err := FromProvider(p)

	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Inst)
	assert.NotNil(t, tel.Inst.PhaseDuration)
	assert.NotNil(t, tel.Inst.UnitDuration)
	assert.NotNil(t, tel.Inst.UnitsExecuted)
	assert.NotNil(t, tel.Inst.UnitFailures)
	assert.NotNil(t, tel.Inst.ThrottleDelays)
	assert.NotNil(t, tel.Inst.ActiveExecutions)
}

func TestNoop(t *testing.T) {
	tel := Noop()

	require.NotNil(t, tel)
	assert.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Inst)

	// No-op instruments accept recordings without panicking.
	ctx := context.Background()
	tel.Inst.PhaseDuration.Record(ctx, 1.5)
	tel.Inst.UnitsExecuted.Add(ctx, 1)
	tel.Inst.ActiveExecutions.Add(ctx, -1)

	_, span := StartSpan(ctx, tel.Tracer, "test.span", AttrExecutionID.String("x"))
	span.End()
}
