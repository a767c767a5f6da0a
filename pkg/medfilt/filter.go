// Package medfilt computes running medians over streams of float64 samples.
//
// The core is MedianFilter, a dual-heap order-statistics engine that keeps
// the median of a bounded, changing multiset available in O(log w) per
// update: a max-heap holds the lower half of the window, a min-heap the upper
// half, and a fixed-capacity position index tracks where every resident
// currently lives so that the oldest sample can be evicted from the middle of
// either heap without a scan. NaN samples are tracked as excluded residents
// that occupy window slots but neither heap.
//
// RunningMedian and RunningMedianInto drive a filter across a whole input
// sequence under one of five boundary taperings.
package medfilt

import (
	"fmt"
	"math"
)

// NaNPolicy selects how Median treats NaN residents.
type NaNPolicy string

const (
	// NaNInclude makes the median NaN whenever any resident is NaN.
	NaNInclude NaNPolicy = "include"
	// NaNIgnore computes the median of the non-NaN residents only.
	NaNIgnore NaNPolicy = "ignore"
)

// Valid reports whether p is a recognized policy.
func (p NaNPolicy) Valid() bool {
	return p == NaNInclude || p == NaNIgnore
}

// ParseNaNPolicy validates a policy supplied as a string.
func ParseNaNPolicy(s string) (NaNPolicy, error) {
	p := NaNPolicy(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown NaN policy %q", ErrInvalidArgument, s)
	}
	return p, nil
}

// MedianFilter maintains the median of a sliding window of samples.
//
// The window has a fixed maximum capacity chosen at construction. Grow
// appends a sample while the window is below capacity, Roll replaces the
// oldest sample once it is full, and Shrink drops the oldest sample without
// replacement. Every operation costs O(log w).
//
// A MedianFilter is a plain mutable value with no internal locking; it must
// not be mutated concurrently. Reset restores the empty state so one filter
// can be reused across many runs without reallocating.
type MedianFilter struct {
	low      pairedHeap // max-heap, values below or at the median
	high     pairedHeap // min-heap, values above the median
	idx      ring
	excluded int // resident NaN count
}

// NewMedianFilter returns an empty filter with the given maximum window
// capacity.
func NewMedianFilter(capacity int) (*MedianFilter, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidArgument, capacity)
	}
	return &MedianFilter{
		low:  pairedHeap{part: partitionLow, max: true, slots: make([]slot, 0, capacity/2+1)},
		high: pairedHeap{part: partitionHigh, slots: make([]slot, 0, capacity/2+1)},
		idx:  newRing(capacity),
	}, nil
}

// Len returns the number of resident samples, NaNs included.
func (f *MedianFilter) Len() int {
	return f.idx.n
}

// Cap returns the maximum window capacity.
func (f *MedianFilter) Cap() int {
	return len(f.idx.entries)
}

// Full reports whether the window has been grown to capacity.
func (f *MedianFilter) Full() bool {
	return f.idx.n == len(f.idx.entries)
}

// Reset empties the filter back to zero residents, keeping its capacity and
// backing storage.
func (f *MedianFilter) Reset() {
	f.low.reset()
	f.high.reset()
	f.idx.reset()
	f.excluded = 0
}

// Median returns the median of the current residents, or NaN when it is
// undefined: the filter is empty, every resident is NaN, or policy is
// NaNInclude and at least one resident is NaN.
func (f *MedianFilter) Median(policy NaNPolicy) float64 {
	if f.excluded > 0 && policy != NaNIgnore {
		return math.NaN()
	}
	lo, hi := f.low.len(), f.high.len()
	if lo == 0 {
		return math.NaN()
	}
	if lo == hi {
		return (f.low.top().value + f.high.top().value) / 2
	}
	return f.low.top().value
}

// Grow appends v as the newest resident. It returns ErrCapacityExceeded,
// without mutating anything, if the window is already at capacity.
//
// When a real (non-NaN) value lands on the wrong side of the current median,
// the boundary element of the other heap is displaced into the growing heap
// and v takes its slot, so a grow never moves more than one element between
// partitions.
func (f *MedianFilter) Grow(v float64) error {
	if f.Full() {
		return ErrCapacityExceeded
	}
	if math.IsNaN(v) {
		f.idx.append(partitionExcluded, -1)
		f.excluded++
		return nil
	}
	seq := f.idx.append(partitionLow, -1)
	switch {
	case f.low.len() == 0:
		// First real value. An empty low partition implies an empty high
		// partition, NaN residents notwithstanding.
		f.low.push(&f.idx, slot{value: v, seq: seq})
	case f.low.len() == f.high.len():
		// Low must grow.
		if v > f.high.top().value {
			displaced := f.high.top()
			f.high.replaceTop(&f.idx, slot{value: v, seq: seq})
			f.low.push(&f.idx, displaced)
		} else {
			f.low.push(&f.idx, slot{value: v, seq: seq})
		}
	default:
		// Low is one larger; high must grow.
		if v < f.low.top().value {
			displaced := f.low.top()
			f.low.replaceTop(&f.idx, slot{value: v, seq: seq})
			f.high.push(&f.idx, displaced)
		} else {
			f.high.push(&f.idx, slot{value: v, seq: seq})
		}
	}
	return nil
}

// Shrink evicts the oldest resident without replacement. It returns
// ErrUnderflow, without mutating anything, when at most one resident is left.
func (f *MedianFilter) Shrink() error {
	if f.idx.n <= 1 {
		return ErrUnderflow
	}
	oldest := f.idx.popOldest()
	if oldest.part == partitionExcluded {
		f.excluded--
		return nil
	}
	if f.low.len() == f.high.len() {
		// Even split: high gives up an element.
		if oldest.part == partitionLow {
			// The evicted slot is in low, so high's smallest element crosses
			// over to fill the hole. It is >= everything in low and sifts up.
			moved := f.high.removeTop(&f.idx)
			f.low.slots[oldest.pos] = moved
			f.low.record(&f.idx, oldest.pos)
			f.low.siftUp(&f.idx, oldest.pos)
		} else {
			f.high.remove(&f.idx, oldest.pos)
		}
		return nil
	}
	// Low-heavy split: low gives up an element.
	if oldest.part == partitionHigh {
		moved := f.low.removeTop(&f.idx)
		f.high.slots[oldest.pos] = moved
		f.high.record(&f.idx, oldest.pos)
		f.high.siftUp(&f.idx, oldest.pos)
	} else {
		f.low.remove(&f.idx, oldest.pos)
	}
	return nil
}

// Roll replaces the oldest resident with v, keeping the window length at
// capacity. It returns ErrNotFull, without mutating anything, if the window
// has not been grown to capacity yet.
//
// The replacement reuses the evicted element's heap slot: at most one
// boundary element migrates between partitions and no heap storage is popped
// or pushed.
func (f *MedianFilter) Roll(v float64) error {
	if !f.Full() {
		return ErrNotFull
	}
	if f.Cap() == 1 {
		f.rollSingle(v)
		return nil
	}
	oldest := f.idx.oldest()
	if oldest.part == partitionExcluded || math.IsNaN(v) {
		// NaN on either side changes the exclusion count; the plain
		// shrink-then-grow sequence keeps that bookkeeping in one place.
		if err := f.Shrink(); err != nil {
			return err
		}
		return f.Grow(v)
	}
	p := oldest.pos
	f.idx.popOldest()
	seq := f.idx.append(oldest.part, p)
	if oldest.part == partitionLow {
		if f.high.len() > 0 && v > f.high.top().value {
			// v belongs in high: high's smallest crosses into the hole and v
			// takes the high root.
			moved := f.high.top()
			f.low.slots[p] = moved
			f.low.record(&f.idx, p)
			f.high.replaceTop(&f.idx, slot{value: v, seq: seq})
			f.low.fix(&f.idx, p)
		} else {
			f.low.slots[p] = slot{value: v, seq: seq}
			f.low.record(&f.idx, p)
			f.low.fix(&f.idx, p)
		}
		return nil
	}
	if f.low.len() > 0 && v < f.low.top().value {
		moved := f.low.top()
		f.high.slots[p] = moved
		f.high.record(&f.idx, p)
		f.low.replaceTop(&f.idx, slot{value: v, seq: seq})
		f.high.fix(&f.idx, p)
	} else {
		f.high.slots[p] = slot{value: v, seq: seq}
		f.high.record(&f.idx, p)
		f.high.fix(&f.idx, p)
	}
	return nil
}

// rollSingle handles the capacity-1 window, where the sole resident is
// replaced outright.
func (f *MedianFilter) rollSingle(v float64) {
	oldest := f.idx.popOldest()
	if oldest.part == partitionExcluded {
		f.excluded--
	} else {
		f.low.reset()
	}
	if math.IsNaN(v) {
		f.idx.append(partitionExcluded, -1)
		f.excluded++
		return
	}
	seq := f.idx.append(partitionLow, -1)
	f.low.push(&f.idx, slot{value: v, seq: seq})
}

// checkInvariants verifies the structural invariants: partition balance, the
// heap order of both partitions, the exclusion count, and the round-trip of
// every ring entry through its heap slot back to its own sequence position.
func (f *MedianFilter) checkInvariants() error {
	lo, hi := f.low.len(), f.high.len()
	if lo != hi && lo != hi+1 {
		return fmt.Errorf("partition sizes unbalanced: |low|=%d |high|=%d", lo, hi)
	}
	if lo+hi+f.excluded != f.idx.n {
		return fmt.Errorf("resident count mismatch: %d+%d+%d != %d", lo, hi, f.excluded, f.idx.n)
	}
	if lo > 0 && hi > 0 && f.low.top().value > f.high.top().value {
		return fmt.Errorf("partition overlap: top(low)=%v > top(high)=%v", f.low.top().value, f.high.top().value)
	}
	excluded := 0
	for i := 0; i < f.idx.n; i++ {
		seq := f.idx.offset + i
		e := f.idx.at(seq)
		var h *pairedHeap
		switch e.part {
		case partitionExcluded:
			excluded++
			continue
		case partitionLow:
			h = &f.low
		case partitionHigh:
			h = &f.high
		}
		if e.pos < 0 || e.pos >= h.len() {
			return fmt.Errorf("ring entry %d: heap position %d out of range", i, e.pos)
		}
		if h.slots[e.pos].seq != seq {
			return fmt.Errorf("ring entry %d: back-pointer mismatch, heap slot holds seq %d, want %d", i, h.slots[e.pos].seq, seq)
		}
	}
	if excluded != f.excluded {
		return fmt.Errorf("exclusion count mismatch: counted %d, tracked %d", excluded, f.excluded)
	}
	for _, h := range []*pairedHeap{&f.low, &f.high} {
		for i := 1; i < h.len(); i++ {
			parent := (i - 1) / 2
			if h.before(h.slots[i].value, h.slots[parent].value) {
				return fmt.Errorf("heap order violated at slot %d", i)
			}
		}
	}
	return nil
}
