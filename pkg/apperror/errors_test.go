package apperror

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("course not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("insufficient permissions: %w", ErrForbidden), http.StatusForbidden},
		{"bad request", fmt.Errorf("only pending courses can be approved: %w", ErrBadRequest), http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"conflict", fmt.Errorf("already enrolled in this course: %w", ErrConflict), http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error", New(http.StatusRequestEntityTooLarge, "file too large", ErrBadRequest), http.StatusRequestEntityTooLarge},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MapErrorToStatus(tc.err); got != tc.want {
				t.Fatalf("status: want=%d got=%d", tc.want, got)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "file type not allowed", ErrBadRequest)
	if err.Error() != "file type not allowed" {
		t.Fatalf("message: want=%q got=%q", "file type not allowed", err.Error())
	}

	bare := New(http.StatusNotFound, "", nil)
	if bare.Error() != http.StatusText(http.StatusNotFound) {
		t.Fatalf("message: want=%q got=%q", http.StatusText(http.StatusNotFound), bare.Error())
	}
}
