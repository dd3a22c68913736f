package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Collector installs an in-process meter provider so a run can report its
// metrics on exit without an external backend.
type Collector struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewCollector creates the provider and makes it the global one.
func NewCollector() *Collector {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	return &Collector{reader: reader, provider: provider}
}

// Summary holds the totals of one collection.
type Summary struct {
	Flashes     int64
	Transitions int64
	Heartbeats  int64
	OrderCount  uint64
	OrderMean   float64
}

// Collect reads the current totals.
func (c *Collector) Collect(ctx context.Context) (Summary, error) {
	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(ctx, &rm); err != nil {
		return Summary{}, fmt.Errorf("collect metrics: %w", err)
	}
	var s Summary
	var orderSum float64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				switch m.Name {
				case FlashesMetric:
					s.Flashes += total
				case TransitionsMetric:
					s.Transitions += total
				case HeartbeatsMetric:
					s.Heartbeats += total
				}
			case metricdata.Histogram[float64]:
				if m.Name != OrderMetric {
					continue
				}
				for _, dp := range data.DataPoints {
					s.OrderCount += dp.Count
					orderSum += dp.Sum
				}
			}
		}
	}
	if s.OrderCount > 0 {
		s.OrderMean = orderSum / float64(s.OrderCount)
	}
	return s, nil
}

// Shutdown flushes and stops the provider.
func (c *Collector) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}
