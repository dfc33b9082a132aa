package apiclient

import (
	"bytes"
	"encoding/json"
	"net/http"

	"grandson-client/internal/model"
)

// Envelope is the single canonical response shape the client exposes.
// The backend's `{success, data, error}` envelope and its legacy endpoints
// returning bare arrays or objects are normalized here, at the transport
// boundary, so no caller ever unions two shapes.
type Envelope struct {
	Data json.RawMessage
}

// Decode unmarshals the envelope data into v. An envelope without data
// leaves v untouched.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return model.NewAPIError(model.ErrCodeInvalidJSON, "Réponse du serveur illisible")
	}
	return nil
}

// Records decodes the envelope data as a list of loose records, the input
// shape of the transform layer. A single object decodes as a one-element
// list.
func (e *Envelope) Records() ([]map[string]any, error) {
	if len(e.Data) == 0 {
		return []map[string]any{}, nil
	}

	trimmed := bytes.TrimSpace(e.Data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var record map[string]any
		if err := e.Decode(&record); err != nil {
			return nil, err
		}
		return []map[string]any{record}, nil
	}

	var records []map[string]any
	if err := e.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// wireEnvelope mirrors the backend's enveloped response body.
type wireEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *wireError      `json:"error"`
	Message string          `json:"message"`
}

// wireError mirrors the backend's structured error body.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// normalize converts a response body into the canonical envelope. Bodies
// without the `success` discriminator are legacy bare payloads and wrap
// as-is. A body declaring `success: false` is an error response in a 2xx
// suit and surfaces as one.
func normalize(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Envelope{}, nil
	}

	var wire wireEnvelope
	if err := json.Unmarshal(trimmed, &wire); err == nil && wire.Success != nil {
		if !*wire.Success {
			return nil, wire.apiError(model.ErrCodeRequestFailed, "La requête a échoué")
		}
		data := wire.Data
		if len(data) == 0 {
			data = trimmed
		}
		return &Envelope{Data: data}, nil
	}

	return &Envelope{Data: trimmed}, nil
}

// apiError builds the structured error carried by the envelope, falling
// back to the given code and message when the body carries none.
func (w *wireEnvelope) apiError(fallbackCode, fallbackMessage string) *model.APIError {
	if w.Error != nil && w.Error.Message != "" {
		code := w.Error.Code
		if code == "" {
			code = model.ErrCodeRequestFailed
		}
		return model.NewAPIError(code, w.Error.Message)
	}
	if w.Message != "" {
		return model.NewAPIError(model.ErrCodeRequestFailed, w.Message)
	}
	return model.NewAPIError(fallbackCode, fallbackMessage)
}

// parseError extracts a structured error from a non-2xx response body.
// Both known shapes are tried ({error:{code,message}} then {message});
// anything unparseable falls back to the HTTP status text. Callers get one
// error type and never see raw status codes.
func parseError(status int, body []byte) *model.APIError {
	var wire wireEnvelope
	if err := json.Unmarshal(body, &wire); err == nil {
		return wire.apiError(model.ErrCodeRequestFailed, http.StatusText(status))
	}

	return model.NewAPIError(model.ErrCodeRequestFailed, http.StatusText(status))
}
