package medfilt

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func sameSeries(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameMedian(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestRunningMedianScenarios(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name     string
		input    []float64
		window   int
		tapering Tapering
		policy   NaNPolicy
		expected []float64
	}{
		{
			name:     "symmetric",
			input:    []float64{1, 4, 2, 1},
			window:   3,
			tapering: TaperSymmetric,
			policy:   NaNInclude,
			expected: []float64{1, 2, 2, 1},
		},
		{
			name:     "asymmetric",
			input:    []float64{1, 4, 2, 1},
			window:   3,
			tapering: TaperAsymmetric,
			policy:   NaNInclude,
			expected: []float64{1, 2.5, 2, 2, 1.5, 1},
		},
		{
			name:     "asymmetric truncated",
			input:    []float64{1, 4, 2, 1},
			window:   3,
			tapering: TaperAsymmetricTruncated,
			policy:   NaNInclude,
			expected: []float64{2.5, 2, 2, 1.5},
		},
		{
			name:     "none",
			input:    []float64{1, 4, 2, 1},
			window:   3,
			tapering: TaperNone,
			policy:   NaNInclude,
			expected: []float64{2, 2},
		},
		{
			name:     "beginning only",
			input:    []float64{1, 4, 2, 1},
			window:   3,
			tapering: TaperBeginningOnly,
			policy:   NaNInclude,
			expected: []float64{1, 2.5, 2, 2},
		},
		{
			name:     "asymmetric with NaN ignored",
			input:    []float64{-1, nan, nan, 0, nan},
			window:   3,
			tapering: TaperAsymmetric,
			policy:   NaNIgnore,
			expected: []float64{-1, -1, -1, 0, 0, 0, nan},
		},
		{
			name:     "symmetric even window",
			input:    []float64{1, 4, 2, 1, 5},
			window:   4,
			tapering: TaperSymmetric,
			policy:   NaNInclude,
			expected: []float64{2.5, 1.5, 3, 3},
		},
		{
			name:     "window clamped to input length",
			input:    []float64{3, 1, 2},
			window:   10,
			tapering: TaperNone,
			policy:   NaNInclude,
			expected: []float64{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RunningMedian(tt.input, tt.window, tt.tapering, tt.policy)
			if err != nil {
				t.Fatalf("RunningMedian: %v", err)
			}
			if !sameSeries(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestOutputLengthLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 1; n <= 24; n++ {
		input := randomSamples(rng, n, false)
		for window := 1; window <= n+3; window++ {
			for _, tapering := range []Tapering{TaperSymmetric, TaperAsymmetric, TaperAsymmetricTruncated, TaperNone, TaperBeginningOnly} {
				w := ClampWindow(window, n, tapering)
				var want int
				switch tapering {
				case TaperSymmetric, TaperAsymmetricTruncated:
					want = n
					if w%2 == 0 {
						want = n - 1
					}
				case TaperAsymmetric:
					want = n + w - 1
				case TaperNone:
					want = n - w + 1
				case TaperBeginningOnly:
					want = n
				}

				if got, err := OutputLength(n, window, tapering); err != nil || got != want {
					t.Fatalf("OutputLength(%d, %d, %s) = %d, %v; want %d", n, window, tapering, got, err, want)
				}
				out, err := RunningMedian(input, window, tapering, NaNInclude)
				if err != nil {
					t.Fatalf("RunningMedian(n=%d, w=%d, %s): %v", n, window, tapering, err)
				}
				if len(out) != want {
					t.Fatalf("RunningMedian(n=%d, w=%d, %s): output length %d, want %d", n, window, tapering, len(out), want)
				}
			}
		}
	}
}

func TestWindowOneIsIdentity(t *testing.T) {
	input := []float64{3, math.NaN(), 1, 4, 1, 5}
	for _, tapering := range []Tapering{TaperSymmetric, TaperAsymmetric, TaperAsymmetricTruncated, TaperNone, TaperBeginningOnly} {
		for _, policy := range []NaNPolicy{NaNInclude, NaNIgnore} {
			got, err := RunningMedian(input, 1, tapering, policy)
			if err != nil {
				t.Fatalf("%s/%s: %v", tapering, policy, err)
			}
			if !sameSeries(got, input) {
				t.Errorf("%s/%s: expected output to equal input, got %v", tapering, policy, got)
			}
		}
	}
}

func TestTaperNoneAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, w := range []int{2, 3, 7} {
		input := randomSamples(rng, 60, true)
		got, err := RunningMedian(input, w, TaperNone, NaNIgnore)
		if err != nil {
			t.Fatalf("w=%d: %v", w, err)
		}
		for i := range got {
			want := bruteMedian(input[i:i+w], NaNIgnore)
			if !sameMedian(got[i], want) {
				t.Errorf("w=%d output %d: expected %v, got %v", w, i, want, got[i])
			}
		}
	}
}

func TestRunningMedianInto(t *testing.T) {
	input := []float64{1, 4, 2, 1}
	f := mustFilter(t, 3)
	dst := make([]float64, 6)

	for run := 0; run < 3; run++ {
		if err := RunningMedianInto(f, dst, input, TaperAsymmetric, NaNInclude); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if want := []float64{1, 2.5, 2, 2, 1.5, 1}; !sameSeries(dst, want) {
			t.Fatalf("run %d: expected %v, got %v", run, want, dst)
		}
	}

	// Mis-sized destination buffer.
	if err := RunningMedianInto(f, dst[:4], input, TaperAsymmetric, NaNInclude); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short dst: expected ErrInvalidArgument, got %v", err)
	}

	// Filter capacity exceeding the clamped window for this input.
	big := mustFilter(t, 9)
	out := make([]float64, 12)
	if err := RunningMedianInto(big, out, input, TaperAsymmetric, NaNInclude); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("oversized filter: expected ErrInvalidArgument, got %v", err)
	}
}

func TestRunningMedianValidation(t *testing.T) {
	input := []float64{1, 2, 3}
	if _, err := RunningMedian(nil, 3, TaperSymmetric, NaNInclude); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty input: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := RunningMedian(input, 0, TaperSymmetric, NaNInclude); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero window: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := RunningMedian(input, 3, Tapering("middle_out"), NaNInclude); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad tapering: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := RunningMedian(input, 3, TaperSymmetric, NaNPolicy("propagate")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad policy: expected ErrInvalidArgument, got %v", err)
	}
}

func TestParseTapering(t *testing.T) {
	for _, s := range []string{"symmetric", "asymmetric", "asymmetric_truncated", "none", "beginning_only"} {
		if tp, err := ParseTapering(s); err != nil || string(tp) != s {
			t.Errorf("ParseTapering(%q) = %v, %v", s, tp, err)
		}
	}
	if _, err := ParseTapering("sym"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseTapering(sym): expected ErrInvalidArgument, got %v", err)
	}
}
