package app

import "sync"

// RecentSet is a bounded FIFO of item ids used to avoid showing the same
// content twice in a short window. Oldest ids fall off first.
type RecentSet struct {
	mu       sync.Mutex
	capacity int
	order    []string
	members  map[string]struct{}
}

func NewRecentSet(capacity int) *RecentSet {
	return &RecentSet{
		capacity: capacity,
		members:  make(map[string]struct{}),
	}
}

// Add records an id, evicting the oldest entries once over capacity.
// Re-adding a present id is a no-op; FIFO order is by first sighting.
func (r *RecentSet) Add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; ok {
		return
	}
	r.members[id] = struct{}{}
	r.order = append(r.order, id)
	for len(r.order) > r.capacity {
		delete(r.members, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *RecentSet) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[id]
	return ok
}

func (r *RecentSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
