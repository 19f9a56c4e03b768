// README: In-memory store with per-record write locks; used in tests and single-node runs.
package rides

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps rides in a map guarded by a global read lock plus one
// mutex per record, so mutations on distinct rides proceed independently
// while same-ride mutations serialize.
type MemoryStore struct {
	mu    sync.RWMutex
	rides map[string]*Ride
	locks map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides: make(map[string]*Ride),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) Create(ctx context.Context, r *Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.rides[r.ID] = &cp
	s.locks[r.ID] = &sync.Mutex{}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]*Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ride
	for _, r := range s.rides {
		if f.matches(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].ScheduledTime.Before(out[j].ScheduledTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Mutate(ctx context.Context, id string, fn func(*Ride) error) (*Ride, error) {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	r := s.rides[id]
	cp := *r
	s.mu.RUnlock()

	if err := fn(&cp); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.rides[id] = &cp
	s.mu.Unlock()

	out := cp
	return &out, nil
}
