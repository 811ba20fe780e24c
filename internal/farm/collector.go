package farm

import (
	"context"
	"fmt"
	"time"

	"github.com/nongzhi-ai/nongzhi/internal/observe"
)

// DefaultCollectInterval is the default sampling period of the background
// collector.
const DefaultCollectInterval = 30 * time.Second

// Collector periodically samples every zone/sensor pair from a Simulator and
// persists the batch, building up the history the trend tools query.
type Collector struct {
	sim      *Simulator
	store    Store
	interval time.Duration
	metrics  *observe.Metrics
}

// NewCollector creates a Collector writing to store every interval. A
// non-positive interval selects DefaultCollectInterval.
func NewCollector(sim *Simulator, store Store, interval time.Duration, metrics *observe.Metrics) *Collector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Collector{sim: sim, store: store, interval: interval, metrics: metrics}
}

// Run samples immediately and then on every tick until ctx is cancelled.
// Storage failures are logged and the loop keeps going; the next tick retries.
func (c *Collector) Run(ctx context.Context) error {
	log := observe.Logger(ctx)
	log.Info("collector started",
		"interval", c.interval,
		"batch_size", len(Zones)*len(Sensors),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.collect(ctx); err != nil {
			log.Error("collector batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			log.Info("collector stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// collect writes one full snapshot of the farm.
func (c *Collector) collect(ctx context.Context) error {
	batch := c.sim.Snapshot(time.Now())
	if err := c.store.InsertReadings(ctx, batch); err != nil {
		return fmt.Errorf("farm: insert readings: %w", err)
	}
	for _, r := range batch {
		c.metrics.RecordSensorSample(ctx, string(r.Zone), string(r.Sensor))
	}
	return nil
}
