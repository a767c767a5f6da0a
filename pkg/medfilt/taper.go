package medfilt

import "fmt"

// Tapering selects how the window behaves at the boundaries of the input.
type Tapering string

const (
	// TaperSymmetric grows and shrinks the window by two around the center,
	// producing len(input) outputs for odd windows and len(input)-1 for even.
	TaperSymmetric Tapering = "symmetric"
	// TaperAsymmetric grows and shrinks by one, producing len(input)+w-1
	// outputs.
	TaperAsymmetric Tapering = "asymmetric"
	// TaperAsymmetricTruncated is TaperAsymmetric with the short-window
	// outputs at both ends suppressed; output length matches TaperSymmetric.
	TaperAsymmetricTruncated Tapering = "asymmetric_truncated"
	// TaperNone emits only full-window medians: len(input)-w+1 outputs.
	TaperNone Tapering = "none"
	// TaperBeginningOnly grows by one from the start with an output at every
	// step and no trailing taper: len(input) outputs.
	TaperBeginningOnly Tapering = "beginning_only"
)

// Valid reports whether t is a recognized tapering.
func (t Tapering) Valid() bool {
	switch t {
	case TaperSymmetric, TaperAsymmetric, TaperAsymmetricTruncated, TaperNone, TaperBeginningOnly:
		return true
	}
	return false
}

// ParseTapering validates a tapering supplied as a string.
func ParseTapering(s string) (Tapering, error) {
	t := Tapering(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown tapering %q", ErrInvalidArgument, s)
	}
	return t, nil
}

// ClampWindow returns the effective window length for an input of length n:
// never longer than the input, and for the symmetric tapering capped at n-1
// when n is even so the window parity stays workable around the center.
func ClampWindow(window, n int, tapering Tapering) int {
	if window > n {
		window = n
	}
	if tapering == TaperSymmetric && n%2 == 0 && window > n-1 {
		window = n - 1
	}
	return window
}

// OutputLength returns the number of medians produced for an input of length
// n with the requested window and tapering, after window clamping.
func OutputLength(n, window int, tapering Tapering) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: input must not be empty", ErrInvalidArgument)
	}
	if window < 1 {
		return 0, fmt.Errorf("%w: window length must be at least 1, got %d", ErrInvalidArgument, window)
	}
	w := ClampWindow(window, n, tapering)
	switch tapering {
	case TaperSymmetric, TaperAsymmetricTruncated:
		if w%2 == 1 {
			return n, nil
		}
		return n - 1, nil
	case TaperAsymmetric:
		return n + w - 1, nil
	case TaperNone:
		return n - w + 1, nil
	case TaperBeginningOnly:
		return n, nil
	}
	return 0, fmt.Errorf("%w: unknown tapering %q", ErrInvalidArgument, tapering)
}

// RunningMedian computes the running median of input under the given window
// length, tapering and NaN policy, allocating the filter and the output.
func RunningMedian(input []float64, window int, tapering Tapering, policy NaNPolicy) ([]float64, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: unknown NaN policy %q", ErrInvalidArgument, policy)
	}
	outLen, err := OutputLength(len(input), window, tapering)
	if err != nil {
		return nil, err
	}
	f, err := NewMedianFilter(ClampWindow(window, len(input), tapering))
	if err != nil {
		return nil, err
	}
	dst := make([]float64, outLen)
	if err := runInto(f, dst, input, tapering, policy); err != nil {
		return nil, err
	}
	return dst, nil
}

// RunningMedianInto computes the running median of input into dst, reusing a
// caller-owned filter and output buffer so repeated calls allocate nothing.
// The filter's capacity selects the window length and must already account
// for clamping; dst must have exactly the output length for that window. The
// filter is reset before use.
func RunningMedianInto(f *MedianFilter, dst, input []float64, tapering Tapering, policy NaNPolicy) error {
	if !policy.Valid() {
		return fmt.Errorf("%w: unknown NaN policy %q", ErrInvalidArgument, policy)
	}
	w := f.Cap()
	outLen, err := OutputLength(len(input), w, tapering)
	if err != nil {
		return err
	}
	if clamped := ClampWindow(w, len(input), tapering); clamped != w {
		return fmt.Errorf("%w: filter capacity %d exceeds effective window %d for input length %d", ErrInvalidArgument, w, clamped, len(input))
	}
	if len(dst) != outLen {
		return fmt.Errorf("%w: output length %d, want %d", ErrInvalidArgument, len(dst), outLen)
	}
	f.Reset()
	return runInto(f, dst, input, tapering, policy)
}

// pipeline steps a filter across an input sequence. Any filter error sticks
// and halts further steps; a completed run additionally proves that the
// input was fully consumed and the output fully filled, in lockstep.
type pipeline struct {
	f      *MedianFilter
	policy NaNPolicy
	input  []float64
	dst    []float64
	in     int
	out    int
	err    error
}

func (p *pipeline) grow() {
	if p.err != nil {
		return
	}
	if p.err = p.f.Grow(p.input[p.in]); p.err == nil {
		p.in++
	}
}

func (p *pipeline) roll() {
	if p.err != nil {
		return
	}
	if p.err = p.f.Roll(p.input[p.in]); p.err == nil {
		p.in++
	}
}

func (p *pipeline) shrink() {
	if p.err != nil {
		return
	}
	p.err = p.f.Shrink()
}

func (p *pipeline) emit() {
	if p.err != nil {
		return
	}
	p.dst[p.out] = p.f.Median(p.policy)
	p.out++
}

// rollPhase consumes every remaining input element, one output per roll.
func (p *pipeline) rollPhase() {
	for p.err == nil && p.in < len(p.input) {
		p.roll()
		p.emit()
	}
}

func runInto(f *MedianFilter, dst, input []float64, tapering Tapering, policy NaNPolicy) error {
	p := &pipeline{f: f, policy: policy, input: input, dst: dst}
	w := f.Cap()
	switch tapering {
	case TaperSymmetric:
		p.grow()
		if w%2 == 0 {
			// Even windows have no single-element center; seed with two.
			p.grow()
		}
		p.emit()
		for p.err == nil && !p.f.Full() {
			p.grow()
			p.grow()
			p.emit()
		}
		p.rollPhase()
		floor := 1
		if w%2 == 0 {
			floor = 2
		}
		for p.err == nil && p.f.Len() > floor {
			p.shrink()
			p.shrink()
			p.emit()
		}
	case TaperAsymmetric:
		for p.err == nil && !p.f.Full() {
			p.grow()
			p.emit()
		}
		p.rollPhase()
		for p.err == nil && p.f.Len() > 1 {
			p.shrink()
			p.emit()
		}
	case TaperAsymmetricTruncated:
		half := w/2 + 1
		for p.err == nil && !p.f.Full() {
			p.grow()
			if p.f.Len() >= half {
				p.emit()
			}
		}
		p.rollPhase()
		for p.err == nil && p.f.Len() > half {
			p.shrink()
			p.emit()
		}
	case TaperNone:
		for p.err == nil && !p.f.Full() {
			p.grow()
		}
		p.emit()
		p.rollPhase()
	case TaperBeginningOnly:
		for p.err == nil && !p.f.Full() {
			p.grow()
			p.emit()
		}
		p.rollPhase()
	default:
		return fmt.Errorf("%w: unknown tapering %q", ErrInvalidArgument, tapering)
	}
	if p.err != nil {
		return p.err
	}
	if p.in != len(input) || p.out != len(dst) {
		return fmt.Errorf("medfilt: tapering %q consumed %d/%d inputs and produced %d/%d outputs", tapering, p.in, len(input), p.out, len(dst))
	}
	return nil
}
