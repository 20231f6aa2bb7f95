package manager

import "nlpd/internal/registry"

// Event names published by the manager.
const (
	EventBuildStart   = string(registry.BuildStarted)
	EventBuildReady   = string(registry.BuildSucceeded)
	EventBuildFailed  = string(registry.BuildFailed)
	EventWarmupDone   = "warmup_done"
	EventWarmupFailed = "warmup_failed"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + capability/key and optional fields.
type Event struct {
	Name       string
	Capability string
	Key        string
	Fields     map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// SetEventPublisher replaces the publisher. nil restores the default.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.pubMu.Lock()
	m.publisher = p
	m.pubMu.Unlock()
}

func (m *Manager) publish(e Event) {
	m.pubMu.RLock()
	p := m.publisher
	m.pubMu.RUnlock()
	p.Publish(e)
}

// onBuild turns registry build events into manager events and counters.
func (m *Manager) onBuild(ev registry.BuildEvent) {
	fields := map[string]any{}
	switch ev.Phase {
	case registry.BuildSucceeded:
		m.buildsTotal.Add(1)
		fields["duration_ms"] = ev.Duration.Milliseconds()
	case registry.BuildFailed:
		m.buildFailures.Add(1)
		fields["duration_ms"] = ev.Duration.Milliseconds()
		if ev.Err != nil {
			fields["error"] = ev.Err.Error()
			m.setLastError(ev.Err)
		}
	}
	m.publish(Event{Name: string(ev.Phase), Capability: ev.Registry, Key: ev.Key, Fields: fields})
}
