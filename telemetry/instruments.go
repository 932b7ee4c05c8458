package telemetry

import "go.opentelemetry.io/otel/metric"

// Instruments holds all AggMesh metric instruments.
type Instruments struct {
	PhaseDuration    metric.Float64Histogram
	UnitDuration     metric.Float64Histogram
	UnitsExecuted    metric.Int64Counter
	UnitFailures     metric.Int64Counter
	ThrottleDelays   metric.Int64Counter
	ActiveExecutions metric.Int64UpDownCounter
}

// NewInstruments creates all metric instruments from the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	i := &Instruments{}
	var err error

	i.PhaseDuration, err = meter.Float64Histogram("aggmesh.phase.duration",
		metric.WithDescription("Phase execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	i.UnitDuration, err = meter.Float64Histogram("aggmesh.unit.duration",
		metric.WithDescription("Unit execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	i.UnitsExecuted, err = meter.Int64Counter("aggmesh.unit.executed",
		metric.WithDescription("Total units executed"),
	)
	if err != nil {
		return nil, err
	}

	i.UnitFailures, err = meter.Int64Counter("aggmesh.unit.failures",
		metric.WithDescription("Unit executions that failed"),
	)
	if err != nil {
		return nil, err
	}

	i.ThrottleDelays, err = meter.Int64Counter("aggmesh.throttle.delays",
		metric.WithDescription("Throttling delays applied before phases"),
	)
	if err != nil {
		return nil, err
	}

	i.ActiveExecutions, err = meter.Int64UpDownCounter("aggmesh.execution.active",
		metric.WithDescription("Number of currently active executions"),
	)
	if err != nil {
		return nil, err
	}

	return i, nil
}
