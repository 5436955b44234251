package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Basic error",
			code:      ErrInvalidInput,
			message:   "No symptoms provided",
			details:   "The symptoms list was empty after normalization",
			requestID: "req-123",
		},
		{
			name:      "Cache error",
			code:      ErrCache,
			message:   "Failed to clear cache",
			details:   "permission denied",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.requestID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}

			if err.Details != tt.details {
				t.Errorf("Expected details %s, got %s", tt.details, err.Details)
			}

			if err.RequestID != tt.requestID {
				t.Errorf("Expected requestID %s, got %s", tt.requestID, err.RequestID)
			}

			// Check that timestamp is recent (within last minute)
			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		value   interface{}
	}{
		{
			name:    "Empty symptoms",
			field:   "symptoms",
			message: "No symptoms provided",
			value:   "",
		},
		{
			name:    "Negative offset",
			field:   "offset",
			message: "Must not be negative",
			value:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)

			if err.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, err.Field)
			}

			if err.Value != tt.value {
				t.Errorf("Expected value %v, got %v", tt.value, err.Value)
			}

			expectedError := "validation error for field '" + tt.field + "': " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestResolutionError(t *testing.T) {
	t.Run("Network error unwraps cause", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := NewNetworkError("diagnosis", cause)

		if err.Kind != KindNetwork {
			t.Errorf("Expected kind %s, got %s", KindNetwork, err.Kind)
		}
		if !errors.Is(err, cause) {
			t.Error("Expected errors.Is to find the wrapped cause")
		}
	})

	t.Run("Upstream error keeps status", func(t *testing.T) {
		wrapped := fmt.Errorf("query failed: %w", NewUpstreamError("drug_label", 503, "API error: 503"))

		var resErr *ResolutionError
		if !errors.As(wrapped, &resErr) {
			t.Fatal("Expected errors.As to find a ResolutionError")
		}
		if resErr.StatusCode != 503 {
			t.Errorf("Expected status 503, got %d", resErr.StatusCode)
		}
		if resErr.Kind != KindUpstream {
			t.Errorf("Expected kind %s, got %s", KindUpstream, resErr.Kind)
		}
	})

	t.Run("Parse error message", func(t *testing.T) {
		err := NewParseError("text_generation", errors.New("unexpected EOF"))
		expected := "text_generation PARSE error: invalid response body: unexpected EOF"
		if err.Error() != expected {
			t.Errorf("Expected %q, got %q", expected, err.Error())
		}
	})
}

func TestErrorConstants(t *testing.T) {
	constants := map[string]string{
		"ErrInvalidInput":   ErrInvalidInput,
		"ErrValidation":     ErrValidation,
		"ErrExternalAPI":    ErrExternalAPI,
		"ErrCache":          ErrCache,
		"ErrInternalServer": ErrInternalServer,
	}

	expectedValues := map[string]string{
		"ErrInvalidInput":   "INVALID_INPUT",
		"ErrValidation":     "VALIDATION_ERROR",
		"ErrExternalAPI":    "EXTERNAL_API_ERROR",
		"ErrCache":          "CACHE_ERROR",
		"ErrInternalServer": "INTERNAL_SERVER_ERROR",
	}

	for name, actual := range constants {
		expected := expectedValues[name]
		if actual != expected {
			t.Errorf("Expected %s to be %s, got %s", name, expected, actual)
		}
	}
}
