package cache

// EventType classifies a coordinator change notification.
type EventType string

const (
	EventContextChanged EventType = "context_changed"
	EventLoading        EventType = "loading"
	EventUpdated        EventType = "updated"
	EventError          EventType = "error"
	EventInvalidated    EventType = "invalidated"
	EventWatchdog       EventType = "watchdog"
)

// Event is a change notification emitted to subscribers. Consumers react to
// these instead of polling shared state.
type Event struct {
	Type      EventType
	Kind      Kind // zero for context-wide events
	Selection string
}

// Subscribe registers a listener for coordinator events. The returned
// cancel function removes the subscription. Events are delivered best
// effort; a slow consumer loses events rather than blocking the engine.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, 32)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// emitLocked sends an event to all subscribers without blocking.
// Caller must hold c.mu.
func (c *Coordinator) emitLocked(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
