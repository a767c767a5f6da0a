package restserver

import "math"

// MedianRequest is the body of POST /api/v1/median. Samples use pointers so
// that JSON null can stand in for NaN, which JSON cannot represent directly.
type MedianRequest struct {
	Samples   []*float64 `json:"samples"`
	Window    int        `json:"window,omitempty"`
	Tapering  string     `json:"tapering,omitempty"`
	NaNPolicy string     `json:"nan_policy,omitempty"`
}

// MedianResponse carries the computed medians along with the effective
// parameters after clamping and defaulting. NaN medians come back as null.
type MedianResponse struct {
	Medians         []*float64 `json:"medians"`
	Window          int        `json:"window"`
	EffectiveWindow int        `json:"effective_window"`
	Tapering        string     `json:"tapering"`
	NaNPolicy       string     `json:"nan_policy"`
	OutputLength    int        `json:"output_length"`
}

// TaperingsResponse enumerates the accepted parameter values.
type TaperingsResponse struct {
	Taperings   []string `json:"taperings"`
	NaNPolicies []string `json:"nan_policies"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// fromWire converts incoming samples, mapping null to NaN.
func fromWire(in []*float64) []float64 {
	out := make([]float64, len(in))
	for i, p := range in {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	return out
}

// toWire converts computed medians, mapping NaN to null.
func toWire(in []float64) []*float64 {
	out := make([]*float64, len(in))
	for i := range in {
		if math.IsNaN(in[i]) {
			continue
		}
		v := in[i]
		out[i] = &v
	}
	return out
}
