package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"wrapped not found", fmt.Errorf("beer 9: %w", ErrNotFound), http.StatusNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"insufficient", ErrInsufficientStock, http.StatusConflict},
		{"transition", ErrInvalidTransition, http.StatusConflict},
		{"referenced", fmt.Errorf("recipe 1: %w", ErrReferenced), http.StatusConflict},
		{"duplicate key", fmt.Errorf("create malt: %w", gorm.ErrDuplicatedKey), http.StatusConflict},
		{"enum", ErrInvalidEnumValue, http.StatusBadRequest},
		{"malformed", fmt.Errorf("date: %w", ErrMalformedInput), http.StatusBadRequest},
		{"unverified", ErrUnverifiedReference, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFromDB(t *testing.T) {
	t.Parallel()

	if !errors.Is(FromDB(gorm.ErrRecordNotFound), ErrNotFound) {
		t.Fatalf("expected record not found to map to ErrNotFound")
	}
	other := errors.New("conn reset")
	if FromDB(other) != other {
		t.Fatalf("expected other errors to pass through")
	}
}
