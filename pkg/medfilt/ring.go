package medfilt

// partition identifies where a resident sample currently lives.
type partition uint8

const (
	partitionLow      partition = iota // max-heap of the lower half
	partitionHigh                      // min-heap of the upper half
	partitionExcluded                  // NaN resident, member of neither heap
)

// ringEntry locates one resident: the partition that holds it and the array
// index of its heap slot. pos is -1 for excluded entries.
type ringEntry struct {
	part partition
	pos  int
}

// ring is the position index: a fixed-capacity circular buffer with one entry
// per resident, ordered exactly as samples reside in the logical window,
// oldest first. offset is the sequence position of the oldest resident and
// advances by one every time the oldest entry is dropped, so a sequence
// position maps to a buffer slot without ever renumbering existing entries.
type ring struct {
	entries []ringEntry
	head    int
	n       int
	offset  int
}

func newRing(capacity int) ring {
	return ring{entries: make([]ringEntry, capacity)}
}

// append adds an entry for the newest resident and returns its sequence
// position. The caller guarantees there is room.
func (r *ring) append(part partition, pos int) int {
	seq := r.offset + r.n
	r.entries[(r.head+r.n)%len(r.entries)] = ringEntry{part: part, pos: pos}
	r.n++
	return seq
}

// popOldest drops and returns the oldest entry, advancing the offset.
func (r *ring) popOldest() ringEntry {
	e := r.entries[r.head]
	r.head = (r.head + 1) % len(r.entries)
	r.n--
	r.offset++
	return e
}

func (r *ring) oldest() ringEntry {
	return r.entries[r.head]
}

func (r *ring) at(seq int) *ringEntry {
	return &r.entries[(r.head+(seq-r.offset))%len(r.entries)]
}

// setPos rewrites the entry for the resident with the given sequence
// position. The heaps call this on every slot movement so that entries stay
// valid handles while elements sift around.
func (r *ring) setPos(seq int, part partition, pos int) {
	e := r.at(seq)
	e.part = part
	e.pos = pos
}

func (r *ring) reset() {
	r.head = 0
	r.n = 0
	r.offset = 0
}
