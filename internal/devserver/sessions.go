package devserver

import "sync"

// sessionStore keeps each remembered visitor's most recent copied links,
// newest first.
type sessionStore struct {
	mu     sync.Mutex
	limit  int
	recent map[string][]string
}

func newSessionStore(limit int) *sessionStore {
	return &sessionStore{limit: limit, recent: make(map[string][]string)}
}

func (s *sessionStore) Record(id, link string) {
	if id == "" || link == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []string{link}
	for _, l := range s.recent[id] {
		if l != link {
			list = append(list, l)
		}
	}
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.recent[id] = list
}

func (s *sessionStore) Recent(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.recent[id]...)
}

func (s *sessionStore) Forget(id string) {
	s.mu.Lock()
	delete(s.recent, id)
	s.mu.Unlock()
}
