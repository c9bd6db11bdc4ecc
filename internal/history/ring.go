package history

// Ring is a bounded FIFO buffer of samples. When full, appending evicts
// the oldest sample. Not safe for concurrent use; each owner keeps its
// own ring.
type Ring struct {
	samples  []Sample
	capacity int
}

// NewRing creates a ring holding at most capacity samples.
// Capacity values below 1 are treated as 1.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		samples:  make([]Sample, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a sample, evicting the oldest when the ring is full.
func (r *Ring) Append(s Sample) {
	if len(r.samples) == r.capacity {
		copy(r.samples, r.samples[1:])
		r.samples[len(r.samples)-1] = s
		return
	}
	r.samples = append(r.samples, s)
}

// Items returns the samples oldest first. The returned slice is a copy.
func (r *Ring) Items() []Sample {
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	return len(r.samples)
}

// Latest returns the most recent sample, false when empty.
func (r *Ring) Latest() (Sample, bool) {
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}
