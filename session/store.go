package session

import "sync"

type observer struct {
	id uint64
	fn func(Session)
}

// Store owns the one live subscription to the backend's session-change
// notifications and fans changes out to dependents. Current is always the
// last value the backend reported; the store never invents a session of its
// own.
type Store struct {
	// dispatchMu serializes whole notification passes so observers for
	// session N finish before any observer sees N+1.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	current   Session
	observers []observer
	nextID    uint64

	release   func()
	closeOnce sync.Once
}

// NewStore subscribes to src exactly once. Because a Source delivers the
// current session synchronously on subscription, Current is valid as soon as
// NewStore returns.
func NewStore(src Source) *Store {
	s := &Store{}
	s.release = src.ObserveSession(s.accept)
	return s
}

func (s *Store) accept(next Session) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.current = next
	snapshot := make([]observer, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	for _, o := range snapshot {
		o.fn(next)
	}
}

// Current returns the last known session. Synchronous: a value delivered to
// the store is visible here before any observer work for it runs elsewhere.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers an observer for future changes. Observers are notified
// in subscription order. The returned func removes the observer and is safe
// to call more than once. Subscribe does not deliver the current value;
// callers wanting it read Current first.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := range s.observers {
				if s.observers[i].id == id {
					s.observers = append(s.observers[:i], s.observers[i+1:]...)
					break
				}
			}
		})
	}
}

// Close releases the backend subscription exactly once. Observers stay
// registered but will receive no further notifications.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
