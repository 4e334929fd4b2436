package vm

// Segment is an ordered, fixed-length sequence of words. Segment 0 is the
// program segment: the fetch cycle reads instructions from it, but it is
// otherwise an ordinary segment.
type Segment []uint32

// clone returns an independent copy of the segment.
func (s Segment) clone() Segment {
	out := make(Segment, len(s))
	copy(out, s)
	return out
}

// Table maps segment identifiers to segments, recycling freed identifiers
// through a LIFO pool so the identifier space does not grow unboundedly
// under allocate/free churn.
//
// Identifier 0 is permanently the program segment and never enters freeIDs.
type Table struct {
	segments []Segment
	freeIDs  []uint32
}

// NewTable returns a table whose program segment (id 0) holds program.
func NewTable(program Segment) *Table {
	return &Table{segments: []Segment{program}}
}

// Allocate installs a fresh, zero-filled segment of n words and returns its
// identifier. A recycled identifier is preferred over growing the table.
// It traps only if the identifier space itself is exhausted — practically
// unreachable, but a defined failure rather than undefined behavior.
func (t *Table) Allocate(n uint32) (uint32, error) {
	fresh := make(Segment, n)

	if k := len(t.freeIDs); k > 0 {
		id := t.freeIDs[k-1]
		t.freeIDs = t.freeIDs[:k-1]
		t.segments[id] = fresh
		return id, nil
	}

	if uint64(len(t.segments)) >= 1<<32 {
		return 0, &Trap{Reason: ReasonTableExhausted}
	}

	t.segments = append(t.segments, fresh)
	return uint32(len(t.segments) - 1), nil
}

// Free releases the segment named by id and makes id eligible for reuse by
// a subsequent Allocate. The table drops its reference to the segment at
// once, so a later read of id traps; freeing id 0 or an id already on the
// free list is undefined behavior of the UM and traps.
func (t *Table) Free(id uint32) error {
	if id == 0 {
		return &Trap{Reason: ReasonBadSegment, Detail: "unmap of segment 0"}
	}
	if !t.live(id) {
		return &Trap{Reason: ReasonBadSegment, Detail: "unmap of unmapped segment"}
	}
	t.segments[id] = nil
	t.freeIDs = append(t.freeIDs, id)
	return nil
}

// live reports whether id currently names a segment.
func (t *Table) live(id uint32) bool {
	return int(id) < len(t.segments) && t.segments[id] != nil
}

// Read returns the word at offset k of segment id.
func (t *Table) Read(id, k uint32) (uint32, error) {
	if !t.live(id) {
		return 0, &Trap{Reason: ReasonBadSegment, Detail: "read of unmapped segment"}
	}
	seg := t.segments[id]
	if int(k) >= len(seg) {
		return 0, &Trap{Reason: ReasonBadOffset, Detail: "read past segment end"}
	}
	return seg[k], nil
}

// Write stores w at offset k of segment id.
func (t *Table) Write(id, k, w uint32) error {
	if !t.live(id) {
		return &Trap{Reason: ReasonBadSegment, Detail: "write to unmapped segment"}
	}
	seg := t.segments[id]
	if int(k) >= len(seg) {
		return &Trap{Reason: ReasonBadOffset, Detail: "write past segment end"}
	}
	seg[k] = w
	return nil
}

// ReplaceZero deep-copies the segment named by id over segment 0. A no-op
// when id is 0.
func (t *Table) ReplaceZero(id uint32) error {
	if id == 0 {
		return nil
	}
	if !t.live(id) {
		return &Trap{Reason: ReasonBadSegment, Detail: "load program from unmapped segment"}
	}
	t.segments[0] = t.segments[id].clone()
	return nil
}

// Segment0 returns the live program segment, for the fetch cycle.
func (t *Table) Segment0() Segment {
	return t.segments[0]
}

// freeCount reports the number of currently freed (recyclable) identifiers.
func (t *Table) freeCount() int {
	return len(t.freeIDs)
}
