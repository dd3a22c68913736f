// Package telemetry exports swarm activity as OpenTelemetry metrics.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

// Metric names.
const (
	FlashesMetric     = "flashsync.flashes"
	TransitionsMetric = "flashsync.transitions"
	HeartbeatsMetric  = "flashsync.heartbeats"
	OrderMetric       = "flashsync.order"
)

// MetricsConfig configures the metrics observer.
type MetricsConfig struct {
	MeterName    string
	MeterVersion string
	// Sim is attached to every data point.
	Sim string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "flashsync",
		MeterVersion: "1.0.0",
		Sim:          "fireflies",
	}
}

// Metrics is a swarm.Observer that records flash onsets, state transitions,
// heartbeats and the per-tick order parameter.
type Metrics struct {
	ctx   context.Context
	attrs metric.MeasurementOption

	flashes     metric.Int64Counter
	transitions metric.Int64Counter
	heartbeats  metric.Int64Counter
	order       metric.Float64Histogram

	err error
}

var _ swarm.Observer = (*Metrics)(nil)

// NewMetrics creates instruments on the global meter provider.
func NewMetrics(ctx context.Context, config MetricsConfig) *Metrics {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}
	meter := otel.GetMeterProvider().Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)
	m := &Metrics{
		ctx:   ctx,
		attrs: metric.WithAttributes(attribute.String("sim", config.Sim)),
	}
	m.err = m.initInstruments(meter)
	return m
}

func (m *Metrics) initInstruments(meter metric.Meter) error {
	var err error
	m.flashes, err = meter.Int64Counter(
		FlashesMetric,
		metric.WithDescription("Number of flash onsets"),
		metric.WithUnit("{flash}"),
	)
	if err != nil {
		return err
	}

	m.transitions, err = meter.Int64Counter(
		TransitionsMetric,
		metric.WithDescription("Number of firefly state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return err
	}

	m.heartbeats, err = meter.Int64Counter(
		HeartbeatsMetric,
		metric.WithDescription("Number of conductor heartbeats"),
		metric.WithUnit("{beat}"),
	)
	if err != nil {
		return err
	}

	m.order, err = meter.Float64Histogram(
		OrderMetric,
		metric.WithDescription("Kuramoto order parameter sampled every tick"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99),
	)
	return err
}

// Error returns any error from instrument creation.
func (m *Metrics) Error() error { return m.err }

// OnTransition implements swarm.Observer.
func (m *Metrics) OnTransition(_ int64, _ int, from, to firefly.State) {
	if m.err != nil {
		return
	}
	m.transitions.Add(m.ctx, 1, m.attrs, metric.WithAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
}

// OnTick implements swarm.Observer.
func (m *Metrics) OnTick(st swarm.TickStats) {
	if m.err != nil {
		return
	}
	if st.Onsets > 0 {
		m.flashes.Add(m.ctx, int64(st.Onsets), m.attrs)
	}
	if st.Heartbeat {
		m.heartbeats.Add(m.ctx, 1, m.attrs)
	}
	m.order.Record(m.ctx, st.Order, m.attrs)
}
