package bridge

import "sync"

// MemoryStore is an in-process Store used by tests and the simulate
// command. Setters notify subscribers synchronously with OriginUntagged,
// mimicking a UI store that cannot attribute its mutations; Update lets
// callers tag the origin explicitly.
type MemoryStore struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(Notification)
	nextID    int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:     State{PlaybackRate: 1.0},
		listeners: make(map[int]func(Notification)),
	}
}

// State returns a snapshot of the store.
func (s *MemoryStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetCurrentTime writes the playhead position and notifies.
func (s *MemoryStore) SetCurrentTime(t float64) {
	s.Update(OriginUntagged, func(st *State) { st.CurrentTime = t })
}

// SetIsPlaying writes the play flag and notifies.
func (s *MemoryStore) SetIsPlaying(playing bool) {
	s.Update(OriginUntagged, func(st *State) { st.IsPlaying = playing })
}

// SetDuration writes the duration and notifies.
func (s *MemoryStore) SetDuration(d float64) {
	s.Update(OriginUntagged, func(st *State) { st.Duration = d })
}

// Update mutates the store under lock and notifies subscribers with the
// given origin. Listeners run synchronously, outside the lock, in
// registration order.
func (s *MemoryStore) Update(origin Origin, fn func(*State)) {
	s.mu.Lock()
	before := s.state
	fn(&s.state)
	changed := s.state != before
	listeners := make([]func(Notification), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l(Notification{Origin: origin})
	}
}

// Subscribe registers a change listener and returns its unsubscribe.
func (s *MemoryStore) Subscribe(listener func(Notification)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
