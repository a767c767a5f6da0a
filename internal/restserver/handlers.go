package restserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/chrissnell/runningmedian/pkg/medfilt"
	"github.com/chrissnell/runningmedian/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// defaults are the validated fallback parameters from the configuration.
type defaults struct {
	window   int
	tapering medfilt.Tapering
	policy   medfilt.NaNPolicy
}

// parseDefaults validates the configured default parameters
func parseDefaults(cfg Config) (defaults, error) {
	var d defaults
	var err error
	if cfg.DefaultWindow < 1 {
		return d, fmt.Errorf("default_window must be at least 1, got %d", cfg.DefaultWindow)
	}
	d.window = cfg.DefaultWindow
	if d.tapering, err = medfilt.ParseTapering(cfg.DefaultTapering); err != nil {
		return d, err
	}
	if d.policy, err = medfilt.ParseNaNPolicy(cfg.DefaultNaNPolicy); err != nil {
		return d, err
	}
	return d, nil
}

// HandleMedian computes a running median over the posted samples
func (h *Handlers) HandleMedian(w http.ResponseWriter, req *http.Request) {
	var body MedianRequest
	if err := h.formatter.DecodeRequest(req, &body); err != nil {
		h.writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.controller.config
	if len(body.Samples) == 0 {
		h.writeError(w, req, http.StatusBadRequest, "samples must not be empty")
		return
	}
	if len(body.Samples) > cfg.MaxSamples {
		h.writeError(w, req, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("too many samples: %d exceeds limit of %d", len(body.Samples), cfg.MaxSamples))
		return
	}

	d, _ := parseDefaults(cfg) // validated at construction
	window := body.Window
	if window == 0 {
		window = d.window
	}
	tapering := d.tapering
	if body.Tapering != "" {
		var err error
		if tapering, err = medfilt.ParseTapering(body.Tapering); err != nil {
			h.writeError(w, req, http.StatusBadRequest, err.Error())
			return
		}
	}
	policy := d.policy
	if body.NaNPolicy != "" {
		var err error
		if policy, err = medfilt.ParseNaNPolicy(body.NaNPolicy); err != nil {
			h.writeError(w, req, http.StatusBadRequest, err.Error())
			return
		}
	}

	input := fromWire(body.Samples)
	medians, err := medfilt.RunningMedian(input, window, tapering, policy)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, medfilt.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		h.writeError(w, req, status, err.Error())
		return
	}

	resp := MedianResponse{
		Medians:         toWire(medians),
		Window:          window,
		EffectiveWindow: medfilt.ClampWindow(window, len(input), tapering),
		Tapering:        string(tapering),
		NaNPolicy:       string(policy),
		OutputLength:    len(medians),
	}
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, resp); err != nil {
		h.controller.logger.Errorf("error writing median response: %v", err)
	}
}

// HandleTaperings lists the accepted tapering and NaN-policy values
func (h *Handlers) HandleTaperings(w http.ResponseWriter, req *http.Request) {
	resp := TaperingsResponse{
		Taperings: []string{
			string(medfilt.TaperSymmetric),
			string(medfilt.TaperAsymmetric),
			string(medfilt.TaperAsymmetricTruncated),
			string(medfilt.TaperNone),
			string(medfilt.TaperBeginningOnly),
		},
		NaNPolicies: []string{
			string(medfilt.NaNInclude),
			string(medfilt.NaNIgnore),
		},
	}
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, resp); err != nil {
		h.controller.logger.Errorf("error writing taperings response: %v", err)
	}
}

// HandleHealth reports liveness
func (h *Handlers) HandleHealth(w http.ResponseWriter, req *http.Request) {
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.controller.logger.Errorf("error writing health response: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	if err := h.formatter.WriteResponse(w, req, status, ErrorResponse{Error: msg}); err != nil {
		h.controller.logger.Errorf("error writing error response: %v", err)
	}
}
