package backend

import (
	"encoding/json"
	"fmt"
)

// GenericErrorMessage is shown when the server gives no usable detail.
const GenericErrorMessage = "Ocurrió un error inesperado. Intenta de nuevo."

// APIError is a non-2xx backend response with its best-effort message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// apiErrorFrom extracts a human-readable message from an error body,
// trying the shapes the backends actually produce: {"message": ...},
// {"error": ...}, {"data": {"message": ...}}, then a generic fallback.
func apiErrorFrom(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: GenericErrorMessage}

	var outer struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return apiErr
	}
	switch {
	case outer.Message != "":
		apiErr.Message = outer.Message
	case outer.Error != "":
		apiErr.Message = outer.Error
	case outer.Data.Message != "":
		apiErr.Message = outer.Data.Message
	}
	return apiErr
}
