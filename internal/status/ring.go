package status

// ring is a fixed-capacity history of gate transitions. When full, the
// oldest entry is overwritten. Not safe for concurrent use — the Tracker
// holds the lock.
type ring struct {
	buf      []Transition
	capacity int
	head     int // next write position
	count    int
}

func newRing(capacity int) *ring {
	return &ring{
		buf:      make([]Transition, capacity),
		capacity: capacity,
	}
}

func (r *ring) push(t Transition) {
	r.buf[r.head] = t
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

// newestFirst returns a copy of the history, most recent transition first.
// The ring itself is left untouched.
func (r *ring) newestFirst() []Transition {
	if r.count == 0 {
		return nil
	}

	result := make([]Transition, r.count)
	// Newest item is at (head - 1) mod capacity.
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(r.head-1-i+r.capacity)%r.capacity]
	}
	return result
}

func (r *ring) len() int {
	return r.count
}
