package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", Invalid("quantity", "must be positive"), "must be positive"},
		{"compliance", &ComplianceError{Missing: []string{"reason"}}, "пациента"},
		{"rejection", &ServerRejection{Status: 409, Message: "insufficient quantity in batch"}, "insufficient quantity in batch"},
		{"auth wrapped", fmt.Errorf("list materials: %w", ErrAuthExpired), "/login"},
		{"network", &NetworkFailure{Op: "GET /materials/", Err: errors.New("connection refused")}, "недоступен"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); !strings.Contains(got, tt.want) {
				t.Fatalf("Describe() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
	if Describe(nil) != "" {
		t.Fatal("Describe(nil) should be empty")
	}
}

func TestNetworkFailureUnwrap(t *testing.T) {
	base := errors.New("reset")
	err := &NetworkFailure{Op: "POST /token", Err: base}
	if !errors.Is(err, base) {
		t.Fatal("NetworkFailure should unwrap to its cause")
	}
}
