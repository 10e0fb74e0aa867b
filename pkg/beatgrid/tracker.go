package beatgrid

// Tracker remembers the last beat index seen by a polling consumer so that it
// can react once per beat. It starts Unknown and must be Reset whenever the
// grid it observes changes.
type Tracker struct {
	known bool
	index int
}

// Reset forgets the last observed beat.
func (t *Tracker) Reset() {
	t.known = false
	t.index = 0
}

// Last returns the last observed beat index, if any.
func (t *Tracker) Last() (int, bool) {
	return t.index, t.known
}

// Observe records the beat index from a poll and reports whether it moved to
// a different beat. The first observation after a reset only records the
// index; an undefined index (ok == false) leaves the state untouched.
func (t *Tracker) Observe(index int, ok bool) bool {
	if !ok {
		return false
	}
	if !t.known {
		t.known = true
		t.index = index
		return false
	}
	if index == t.index {
		return false
	}
	t.index = index
	return true
}

// Poll is Observe(g.BeatIndexAt(at)).
func (t *Tracker) Poll(g Grid, at float64) bool {
	return t.Observe(g.BeatIndexAt(at))
}
