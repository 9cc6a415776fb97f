package impersonate

import "sync"

// Listener receives the effective impersonation context after a change has
// been persisted. A nil context means impersonation ended.
type Listener func(ic *Context)

type notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

func (n *notifier) subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.listeners = append(n.listeners, l)
	idx := len(n.listeners) - 1
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.listeners[idx] = nil
	}
}

// broadcast calls every listener synchronously. Listeners run only after the
// repository write succeeded.
func (n *notifier) broadcast(ic *Context) {
	n.mu.RLock()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	for _, l := range listeners {
		if l != nil {
			l(ic)
		}
	}
}
