package handler

import "sync"

type messageKey struct {
	ChatID    int64
	MessageID int
}

// recentSet remembers recently processed message keys with a bounded size.
// Oldest entries are evicted first once the cap is reached.
type recentSet struct {
	mu    sync.Mutex
	seen  map[messageKey]struct{}
	order []messageKey
	cap   int
}

func newRecentSet(capacity int) *recentSet {
	if capacity <= 0 {
		capacity = 1000
	}
	return &recentSet{
		seen: make(map[messageKey]struct{}, capacity),
		cap:  capacity,
	}
}

func (s *recentSet) Add(key messageKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return
	}

	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}

	s.seen[key] = struct{}{}
	s.order = append(s.order, key)
}

func (s *recentSet) Contains(key messageKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[key]
	return ok
}

func (s *recentSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}
