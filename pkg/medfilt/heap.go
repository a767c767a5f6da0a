package medfilt

// slot pairs a sample value with the sequence position at which it entered
// the window. The sequence position addresses the sample's entry in the
// position index, forming the back-pointer half of the handle scheme.
type slot struct {
	value float64
	seq   int
}

// pairedHeap is an explicit binary heap over an array whose elements stay
// addressable while they move: every swap writes the element's new array
// index through to the position index, so ring entries remain correct
// handles at all times. This is what allows an arbitrary (not just extremal)
// element to be updated or deleted in O(log w).
type pairedHeap struct {
	part  partition
	max   bool
	slots []slot
}

func (h *pairedHeap) len() int {
	return len(h.slots)
}

func (h *pairedHeap) top() slot {
	return h.slots[0]
}

// before reports whether a belongs nearer the top than b.
func (h *pairedHeap) before(a, b float64) bool {
	if h.max {
		return a > b
	}
	return a < b
}

func (h *pairedHeap) push(idx *ring, s slot) {
	h.slots = append(h.slots, s)
	i := len(h.slots) - 1
	h.record(idx, i)
	h.siftUp(idx, i)
}

// replaceTop overwrites the root slot and restores heap order downward.
func (h *pairedHeap) replaceTop(idx *ring, s slot) {
	h.slots[0] = s
	h.record(idx, 0)
	h.siftDown(idx, 0)
}

// removeTop deletes and returns the root slot.
func (h *pairedHeap) removeTop(idx *ring) slot {
	top := h.slots[0]
	last := len(h.slots) - 1
	if last == 0 {
		h.slots = h.slots[:0]
		return top
	}
	h.slots[0] = h.slots[last]
	h.slots = h.slots[:last]
	h.record(idx, 0)
	h.siftDown(idx, 0)
	return top
}

// remove deletes the slot at array index i, wherever it sits in the heap.
func (h *pairedHeap) remove(idx *ring, i int) {
	last := len(h.slots) - 1
	if i == last {
		h.slots = h.slots[:last]
		return
	}
	h.slots[i] = h.slots[last]
	h.slots = h.slots[:last]
	h.record(idx, i)
	h.fix(idx, i)
}

// fix restores heap order at i after its value changed in either direction.
func (h *pairedHeap) fix(idx *ring, i int) {
	if !h.siftDown(idx, i) {
		h.siftUp(idx, i)
	}
}

func (h *pairedHeap) siftUp(idx *ring, i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.before(h.slots[i].value, h.slots[parent].value) {
			return
		}
		h.swap(idx, i, parent)
		i = parent
	}
}

func (h *pairedHeap) siftDown(idx *ring, i int) bool {
	moved := false
	n := len(h.slots)
	for {
		kid := 2*i + 1
		if kid >= n {
			return moved
		}
		if r := kid + 1; r < n && h.before(h.slots[r].value, h.slots[kid].value) {
			kid = r
		}
		if !h.before(h.slots[kid].value, h.slots[i].value) {
			return moved
		}
		h.swap(idx, i, kid)
		i = kid
		moved = true
	}
}

func (h *pairedHeap) swap(idx *ring, i, j int) {
	h.slots[i], h.slots[j] = h.slots[j], h.slots[i]
	h.record(idx, i)
	h.record(idx, j)
}

// record publishes slot i's current location to the position index.
func (h *pairedHeap) record(idx *ring, i int) {
	idx.setPos(h.slots[i].seq, h.part, i)
}

func (h *pairedHeap) reset() {
	h.slots = h.slots[:0]
}
