package directory

import "sync"

// notifier is the registry behind OnReload.
type notifier struct {
	mu       sync.Mutex
	nextID   int
	handlers []handler
}

type handler struct {
	id int
	fn func()
}

func (n *notifier) subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.handlers = append(n.handlers, handler{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(id) })
	}
}

func (n *notifier) unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, h := range n.handlers {
		if h.id == id {
			n.handlers = append(n.handlers[:i:i], n.handlers[i+1:]...)
			return
		}
	}
}

// fire calls every handler in registration order. The handler list is
// copied so handlers may subscribe or unsubscribe while being notified.
func (n *notifier) fire() {
	n.mu.Lock()
	handlers := make([]handler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}
