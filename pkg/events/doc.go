/*
Package events provides an in-memory event broker for the engine's
diagnostics bus.

The events package implements a lightweight event bus for broadcasting
engine diagnostics to interested subscribers: archetype registrations,
entity moves, config finalization, hailstorm cluster packs, async I/O
port lifecycle, and input layer load results. It supports fan-out
subscriptions with asynchronous, non-blocking delivery, so a CLI
progress reporter or test harness can observe engine activity without
coupling to the subsystems that produce it.

# Architecture

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Event Broker                   │          │
	│  │  - In-memory message bus                    │          │
	│  │  - Topic-agnostic (all events broadcast)    │          │
	│  │  - Buffered publish                         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Event Distribution                 │          │
	│  │                                              │          │
	│  │  Publisher → Event Channel (buffer: 100)    │          │
	│  │       ↓                                      │          │
	│  │  Broadcast Loop                              │          │
	│  │       ↓                                      │          │
	│  │  Subscriber Channels (buffer: 50 each)      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Event Types                       │          │
	│  │                                              │          │
	│  │  ECS:       archetype_registered,           │          │
	│  │             entity_added, entity_removed    │          │
	│  │  Config:    finalized                       │          │
	│  │  Hailstorm: cluster_packed, paths_prefixed  │          │
	│  │  AIO:       port_opened, port_closed,       │          │
	│  │             request_failed                  │          │
	│  │  Input:     layer_loaded, layer_rejected    │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Event Broker:
  - Central message bus for event distribution
  - Manages subscriber lifecycle
  - Buffered publish (waits only while the 100-event buffer is full)
  - Graceful shutdown via stop channel

Event:
  - ID: caller-assigned identifier (optional)
  - Type: one of the EventType constants
  - Timestamp: set by Publish if zero
  - Message: human-readable description
  - Metadata: key-value pairs for additional context

Subscriber:
  - Channel that receives Event pointers
  - Buffered (50 events) to handle bursts
  - Created via broker.Subscribe()
  - Closed via broker.Unsubscribe()

# Event Flow

Publish:
 1. Publisher calls broker.Publish(event)
 2. Event added to the main event channel (waits if its buffer is full,
    returns at once after Stop)
 3. Broadcast loop receives event
 4. Event sent to every subscriber channel
 5. Full subscriber buffers skip (no blocking)

Subscribe/Unsubscribe:
 1. broker.Subscribe() registers and returns a buffered channel
 2. Subscriber ranges over the channel in its own goroutine
 3. broker.Unsubscribe(sub) removes and closes the channel

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("[%s] %s: %s\n", event.Timestamp.Format(time.RFC3339), event.Type, event.Message)
		}
	}()

	broker.Publish(&events.Event{
		Type:    events.EventArchetypeRegistered,
		Message: "archetype 'Pos+Vel' registered",
		Metadata: map[string]string{"archetype_id": "1"},
	})

# Design Patterns

Buffered publish, non-blocking fan-out to all subscribers, fire-and-forget
delivery (no acknowledgment, no retry). Suitable for diagnostics and
progress reporting, not for anything requiring guaranteed delivery —
subsystems that need a durable record should write to pkg/catalog
instead.

# Limitations

In-memory only, no persistence or replay, no ordering guarantees
across subscribers, no topic filtering (subscribers filter by Type
themselves).
*/
package events
