/*
Package metrics exposes the engine's runtime counters as Prometheus
gauges, counters, and histograms, plus a small health-check registry
for liveness/readiness HTTP probes.

# Architecture

	┌────────────────────── METRICS ───────────────────────────┐
	│                                                            │
	│  ECS:        archetypes_total, entities_total,            │
	│              chunk_pool_occupancy, entity_move_duration    │
	│  Async I/O:  aio_queue_depth, aio_completions_total,       │
	│              aio_request_duration                          │
	│  Config:     config_finalize_duration, config_blob_bytes  │
	│  Hailstorm:  hailstorm_bytes_packed_total,                 │
	│              hailstorm_pack_duration, resources_packed     │
	│  Input:      input_actions_evaluated_total,                │
	│              input_actions_active, layers_rejected_total   │
	│  Scheduler:  scheduler_queue_depth, scheduler_task_duration│
	│                                                            │
	│  All registered with the default Prometheus registry;     │
	│  Handler() serves them over HTTP in the exposition format. │
	└────────────────────────────────────────────────────────────┘

# Collector

The engine has no single owning "manager" the way a cluster controller
would; each subsystem (ecs.Registry, aio.Port, the scheduler's queues)
runs independently. Collector therefore pulls a Snapshot from a
caller-supplied function on a timer and republishes its fields as
gauges, rather than reaching into concrete subsystem types itself:

	collector := metrics.NewCollector(func() metrics.Snapshot {
		return metrics.Snapshot{ArchetypeCount: registry.ArchetypeCount()}
	}, 15*time.Second)
	collector.Start()
	defer collector.Stop()

# Health

RegisterComponent/UpdateComponent maintain a small in-memory registry
of component health (used by the ecs, aio, and scheduler subsystems
during enginectl startup). GetHealth/GetReadiness summarize it;
HealthHandler/ReadyHandler/LivenessHandler expose the standard
liveness/readiness/health HTTP endpoints.

# Timer

Timer is a thin stopwatch helper:

	timer := metrics.NewTimer()
	// ... do work ...
	timer.ObserveDuration(metrics.EntityMoveDuration)
*/
package metrics
