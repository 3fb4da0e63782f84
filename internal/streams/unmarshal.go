package streams

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spacesedan/ideaflow/internal/models"
)

// ErrMissingPayload is returned when a field/value array carries no payload.
var ErrMissingPayload = errors.New("cloud event data array does not contain a payload field")

const payloadField = "payload"

// ParseRequest decodes an intelligence request from a cloud event body.
//
// Accepted shapes, after taking "data" (or the body itself when absent):
//   - {"payload": <request object or JSON string>}
//   - ["field", "value", ..., "payload", <request>, ...] (stream entry fields)
//   - <request object>
func ParseRequest(body []byte) (models.IntelligenceRequestEvent, error) {
	var req models.IntelligenceRequestEvent

	var envelope map[string]json.RawMessage
	data := json.RawMessage(body)
	if err := json.Unmarshal(body, &envelope); err == nil {
		if inner, ok := envelope["data"]; ok {
			data = inner
		}
	}

	payload, err := extractPayload(data)
	if err != nil {
		return req, err
	}

	if err := decodeRequest(payload, &req); err != nil {
		return req, err
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func extractPayload(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty event body")
	}

	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode event data: %w", err)
		}
		if payload, ok := fields[payloadField]; ok {
			return payload, nil
		}
		return trimmed, nil
	case '[':
		var fields []json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode event data array: %w", err)
		}
		return payloadFromFieldsArray(fields)
	default:
		return trimmed, nil
	}
}

// payloadFromFieldsArray walks alternating name/value entries.
func payloadFromFieldsArray(fields []json.RawMessage) (json.RawMessage, error) {
	for i := 0; i+1 < len(fields); i += 2 {
		var name string
		if err := json.Unmarshal(fields[i], &name); err != nil {
			continue
		}
		if name == payloadField {
			return fields[i+1], nil
		}
	}
	return nil, ErrMissingPayload
}

func decodeRequest(payload json.RawMessage, req *models.IntelligenceRequestEvent) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var serialized string
		if err := json.Unmarshal(trimmed, &serialized); err != nil {
			return fmt.Errorf("failed to decode request payload from string: %w", err)
		}
		if err := json.Unmarshal([]byte(serialized), req); err != nil {
			return fmt.Errorf("failed to decode request payload from string: %w", err)
		}
		return nil
	}

	if err := json.Unmarshal(trimmed, req); err != nil {
		return fmt.Errorf("failed to decode request payload: %w", err)
	}
	return nil
}
