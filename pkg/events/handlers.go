package events

// Handler receives a routed event at one target along its route.
// sender is the target whose handler table (or class) is being invoked.
type Handler func(sender Target, e *EventData)

// HandlerToken identifies one AddHandler registration.
type HandlerToken uint64

type handlerEntry struct {
	token HandlerToken
	fn    Handler
}

// HandlerTable stores instance handlers per event in insertion order.
// The zero value is ready to use.
type HandlerTable struct {
	next    HandlerToken
	entries map[*RoutedEvent][]handlerEntry
}

// Add appends a handler and returns a token for removal. Adding the same
// function twice registers it twice.
func (t *HandlerTable) Add(ev *RoutedEvent, fn Handler) HandlerToken {
	if t.entries == nil {
		t.entries = make(map[*RoutedEvent][]handlerEntry)
	}
	t.next++
	t.entries[ev] = append(t.entries[ev], handlerEntry{token: t.next, fn: fn})
	return t.next
}

// Remove deletes the registration identified by token.
func (t *HandlerTable) Remove(ev *RoutedEvent, token HandlerToken) bool {
	list := t.entries[ev]
	for i, h := range list {
		if h.token != token {
			continue
		}
		// Copy so a dispatch holding the old slice is unaffected.
		next := make([]handlerEntry, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(t.entries, ev)
		} else {
			t.entries[ev] = next
		}
		return true
	}
	return false
}

// Count returns the number of handlers registered for ev.
func (t *HandlerTable) Count(ev *RoutedEvent) int {
	return len(t.entries[ev])
}

// handlers returns the list as of now. Handlers added during dispatch take
// effect on the next raise.
func (t *HandlerTable) handlers(ev *RoutedEvent) []handlerEntry {
	list := t.entries[ev]
	return list[:len(list):len(list)]
}

// AddHandler registers fn on target for ev.
func AddHandler(target Target, ev *RoutedEvent, fn Handler) HandlerToken {
	return target.EventHandlers().Add(ev, fn)
}

// RemoveHandler removes a registration made by AddHandler.
func RemoveHandler(target Target, ev *RoutedEvent, token HandlerToken) bool {
	return target.EventHandlers().Remove(ev, token)
}
