package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	cfg := Config{
		ListenAddr:       "127.0.0.1",
		HTTPPort:         0,
		MaxSamples:       100,
		DefaultWindow:    3,
		DefaultTapering:  "symmetric",
		DefaultNaNPolicy: "include",
	}
	var wg sync.WaitGroup
	ctrl, err := NewController(context.Background(), &wg, cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl
}

func postMedian(t *testing.T, ctrl *Controller, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/median", bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleMedianJSON(t *testing.T) {
	ctrl := newTestController(t)

	body, _ := json.Marshal(MedianRequest{
		Samples:  toWire([]float64{1, 4, 2, 1}),
		Window:   3,
		Tapering: "asymmetric",
	})
	rec := postMedian(t, ctrl, body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp MedianResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	want := []float64{1, 2.5, 2, 2, 1.5, 1}
	if len(resp.Medians) != len(want) {
		t.Fatalf("expected %d medians, got %d", len(want), len(resp.Medians))
	}
	for i, p := range resp.Medians {
		if p == nil || *p != want[i] {
			t.Errorf("median %d: expected %v, got %v", i, want[i], p)
		}
	}
	if resp.EffectiveWindow != 3 || resp.Tapering != "asymmetric" || resp.NaNPolicy != "include" {
		t.Errorf("unexpected echo fields: %+v", resp)
	}
}

func TestHandleMedianNaNAsNull(t *testing.T) {
	ctrl := newTestController(t)

	// null samples are NaN; with nan_policy=ignore the trailing all-NaN
	// window must come back as null.
	body := []byte(`{"samples": [-1, null, null, 0, null], "window": 3, "tapering": "asymmetric", "nan_policy": "ignore"}`)
	rec := postMedian(t, ctrl, body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp MedianResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	wantVals := []float64{-1, -1, -1, 0, 0, 0}
	if len(resp.Medians) != 7 {
		t.Fatalf("expected 7 medians, got %d", len(resp.Medians))
	}
	for i, want := range wantVals {
		if resp.Medians[i] == nil || *resp.Medians[i] != want {
			t.Errorf("median %d: expected %v, got %v", i, want, resp.Medians[i])
		}
	}
	if resp.Medians[6] != nil {
		t.Errorf("median 6: expected null, got %v", *resp.Medians[6])
	}
}

func TestHandleMedianMsgPack(t *testing.T) {
	ctrl := newTestController(t)

	reqBody := MedianRequest{
		Samples:  toWire([]float64{1, 4, 2, 1}),
		Window:   3,
		Tapering: "none",
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(reqBody); err != nil {
		t.Fatalf("encoding request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/median?format=msgpack", &buf)
	req.Header.Set("Content-Type", "application/x-msgpack")
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Fatalf("expected msgpack response, got %q", ct)
	}

	var resp MedianResponse
	dec := msgpack.NewDecoder(rec.Body)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	want := []float64{2, 2}
	if len(resp.Medians) != len(want) {
		t.Fatalf("expected %d medians, got %d", len(want), len(resp.Medians))
	}
	for i, p := range resp.Medians {
		if p == nil || *p != want[i] {
			t.Errorf("median %d: expected %v, got %v", i, want[i], p)
		}
	}
}

func TestHandleMedianValidation(t *testing.T) {
	ctrl := newTestController(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty samples", `{"samples": [], "window": 3}`, http.StatusBadRequest},
		{"bad tapering", `{"samples": [1, 2, 3], "tapering": "sideways"}`, http.StatusBadRequest},
		{"bad policy", `{"samples": [1, 2, 3], "nan_policy": "explode"}`, http.StatusBadRequest},
		{"negative window", `{"samples": [1, 2, 3], "window": -2}`, http.StatusBadRequest},
		{"malformed body", `{"samples": [1, 2`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postMedian(t, ctrl, []byte(tt.body), "application/json")
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("expected error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestHandleTaperings(t *testing.T) {
	ctrl := newTestController(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/taperings", nil)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TaperingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Taperings) != 5 || len(resp.NaNPolicies) != 2 {
		t.Errorf("unexpected enumeration: %+v", resp)
	}
}

func TestTooManySamples(t *testing.T) {
	ctrl := newTestController(t)

	samples := make([]float64, 101)
	body, _ := json.Marshal(MedianRequest{Samples: toWire(samples), Window: 3})
	rec := postMedian(t, ctrl, body, "application/json")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}
