// Package responseformat encodes HTTP request and response bodies in JSON or
// MessagePack.
package responseformat

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const msgpackContentType = "application/x-msgpack"

// Formatter handles decoding requests and encoding responses in JSON or
// MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// DecodeRequest decodes the request body into dst. MessagePack is used when
// the Content-Type is application/x-msgpack; anything else is treated as JSON.
func (f *Formatter) DecodeRequest(req *http.Request, dst any) error {
	ct := req.Header.Get("Content-Type")
	if ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			ct = parsed
		}
	}
	if ct == msgpackContentType {
		decoder := msgpack.NewDecoder(req.Body)
		decoder.SetCustomStructTag("json")
		if err := decoder.Decode(dst); err != nil {
			return fmt.Errorf("invalid msgpack request body: %w", err)
		}
		return nil
	}
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON request body: %w", err)
	}
	return nil
}

// WriteResponse writes the response in the appropriate format. JSON is the
// default. MessagePack is used when the request asked for it, either with
// format=msgpack or via the Accept header.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, status int, data any) error {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if f.wantsMsgPack(req) {
		w.Header().Set("Content-Type", msgpackContentType)
		w.WriteHeader(status)
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json") // Use json tags for MessagePack
		return encoder.Encode(data)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) wantsMsgPack(req *http.Request) bool {
	if req.URL.Query().Get("format") == "msgpack" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), msgpackContentType)
}
