package events

// Pool is a free list of EventData. It is not safe for concurrent use; a
// Router and its pool belong to the UI goroutine.
type Pool struct {
	free        []*EventData
	outstanding int
	allocated   int
}

// Acquire returns a cleared EventData.
func (p *Pool) Acquire() *EventData {
	p.outstanding++
	if n := len(p.free); n > 0 {
		e := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		e.pooled = false
		return e
	}
	p.allocated++
	return &EventData{}
}

// Release returns e to the free list. Releasing the same instance twice is a
// no-op.
func (p *Pool) Release(e *EventData) {
	if e == nil || e.pooled {
		return
	}
	e.reset()
	e.pooled = true
	p.outstanding--
	p.free = append(p.free, e)
}

// Outstanding returns the number of acquired, unreleased instances.
func (p *Pool) Outstanding() int { return p.outstanding }

// Allocated returns how many instances the pool has created.
func (p *Pool) Allocated() int { return p.allocated }
