package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"caja/internal/core"
)

// Some endpoints return the resource directly, others wrap it as
// {"data": ...}. These decoders are the single place that difference is
// allowed to exist.

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func unwrap(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 {
		return bytes.TrimSpace(env.Data)
	}
	return trimmed
}

func decodeList(body []byte) ([]core.Transaction, error) {
	payload := unwrap(body)
	if len(payload) == 0 {
		return nil, nil
	}
	if payload[0] != '[' {
		return nil, fmt.Errorf("expected array, got %q", snippet(payload))
	}
	var records []core.Transaction
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeOne(body []byte) (core.Transaction, error) {
	payload := unwrap(body)
	if len(payload) == 0 {
		return core.Transaction{}, fmt.Errorf("empty response body")
	}
	var t core.Transaction
	if err := json.Unmarshal(payload, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func snippet(b []byte) string {
	if len(b) > 40 {
		b = b[:40]
	}
	return string(b)
}
