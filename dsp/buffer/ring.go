package buffer

import "sync"

// Ring is a fixed-capacity FIFO of float64 samples that overwrites its oldest
// element when full.
//
// The ring tracks how many of the newest samples the consumer has not yet
// taken with Consume. Overwriting an already consumed sample is normal
// operation; overwriting an unconsumed one counts as a drop.
type Ring struct {
	mu      sync.Mutex
	data    []float64
	head    int // index of the oldest sample
	size    int
	unread  int // newest samples not yet consumed
	total   uint64
	dropped uint64
}

// NewRing returns an empty Ring with the given capacity. Capacities below 1
// are raised to 1.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring{data: make([]float64, capacity)}
}

// Push appends one sample and reports whether an unconsumed sample was
// discarded.
func (r *Ring) Push(v float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.push(v)
}

// PushBlock appends samples in order and returns how many unconsumed samples
// were discarded.
func (r *Ring) PushBlock(samples []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0

	for _, v := range samples {
		if r.push(v) {
			dropped++
		}
	}

	return dropped
}

func (r *Ring) push(v float64) bool {
	capacity := len(r.data)
	r.total++

	if r.size < capacity {
		r.data[(r.head+r.size)%capacity] = v
		r.size++
		r.unread++

		return false
	}

	r.data[r.head] = v
	r.head = (r.head + 1) % capacity

	if r.unread < capacity {
		r.unread++
		return false
	}

	r.dropped++

	return true
}

// Consume marks up to n of the oldest unconsumed samples as read and returns
// how many were marked. Consumed samples stay available to Latest until
// they are overwritten.
func (r *Ring) Consume(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = max(0, min(n, r.unread))
	r.unread -= n

	return n
}

// Unread returns the number of buffered samples not yet consumed.
func (r *Ring) Unread() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unread
}

// Latest copies the newest len(dst) samples into dst in chronological order.
// It returns false, leaving dst untouched, when fewer samples are buffered.
func (r *Ring) Latest(dst []float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	if n > r.size {
		return false
	}

	capacity := len(r.data)
	start := (r.head + r.size - n) % capacity

	first := min(n, capacity-start)
	copy(dst, r.data[start:start+first])
	copy(dst[first:], r.data[:n-first])

	return true
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.size
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Total returns the number of samples ever pushed.
func (r *Ring) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.total
}

// Dropped returns the number of unconsumed samples discarded because the ring
// was full.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dropped
}

// Reset discards all buffered samples. Counters are kept.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.head = 0
	r.size = 0
	r.unread = 0
}
