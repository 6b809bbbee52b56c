package metrics

import "time"

// Snapshot is a point-in-time reading of subsystem counters. The engine has
// no single owning manager the way Warren's cluster controller did; each
// subsystem (ecs.Registry, aio.Port, the scheduler) is independent, so the
// caller gathers a Snapshot from whichever subsystems it's running and hands
// it to the Collector rather than the Collector reaching into them directly.
type Snapshot struct {
	ArchetypeCount   int
	EntitiesByArche  map[string]int
	ChunkOccupancy   map[string]float64
	AIOQueueDepth    map[string]int
	SchedulerDepth   map[string]int
	SchedulerWorkers int
}

// SnapshotFunc produces a fresh Snapshot when called.
type SnapshotFunc func() Snapshot

// Collector periodically pulls a Snapshot and republishes it as the
// registered Prometheus gauges.
type Collector struct {
	snapshot SnapshotFunc
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a collector that polls fn every interval (15s if
// interval is zero).
func NewCollector(fn SnapshotFunc, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{snapshot: fn, interval: interval, stopCh: make(chan struct{})}
}

// Start begins collecting metrics in a background goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.snapshot == nil {
		return
	}
	s := c.snapshot()

	ArchetypesTotal.Set(float64(s.ArchetypeCount))
	for archetype, count := range s.EntitiesByArche {
		EntitiesTotal.WithLabelValues(archetype).Set(float64(count))
	}
	for archetype, occupancy := range s.ChunkOccupancy {
		ChunkPoolOccupancy.WithLabelValues(archetype).Set(occupancy)
	}
	for port, depth := range s.AIOQueueDepth {
		AIOQueueDepth.WithLabelValues(port).Set(float64(depth))
	}
	for queue, depth := range s.SchedulerDepth {
		SchedulerQueueDepth.WithLabelValues(queue).Set(float64(depth))
	}
	SchedulerWorkersTotal.Set(float64(s.SchedulerWorkers))
}
