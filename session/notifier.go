package session

import "sync"

// Notifier is the publication side of [Source]. Backend adapters keep one
// Notifier, call Publish on every auth-state change, and implement
// ObserveSession by delegating to Observe. The zero current value is the
// anonymous session, so a fresh Notifier reports "not signed in".
type Notifier struct {
	dispatchMu sync.Mutex

	mu      sync.Mutex
	current Session
	subs    []observer
	nextID  uint64
}

// NewNotifier returns a Notifier whose current session is anonymous.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Current returns the last published session.
func (n *Notifier) Current() Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Publish records next as current and notifies every subscriber in
// subscription order. Passes are serialized; Publish returns after all
// subscriber callbacks for next have run.
func (n *Notifier) Publish(next Session) {
	n.dispatchMu.Lock()
	defer n.dispatchMu.Unlock()

	n.mu.Lock()
	n.current = next
	snapshot := make([]observer, len(n.subs))
	copy(snapshot, n.subs)
	n.mu.Unlock()

	for _, o := range snapshot {
		o.fn(next)
	}
}

// Observe registers fn and invokes it immediately with the current session,
// holding the dispatch lock so the immediate delivery cannot interleave with
// a concurrent Publish. The returned func removes fn and is idempotent.
func (n *Notifier) Observe(fn func(Session)) (unsubscribe func()) {
	n.dispatchMu.Lock()

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, observer{id: id, fn: fn})
	cur := n.current
	n.mu.Unlock()

	fn(cur)
	n.dispatchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i := range n.subs {
				if n.subs[i].id == id {
					n.subs = append(n.subs[:i], n.subs[i+1:]...)
					break
				}
			}
		})
	}
}
