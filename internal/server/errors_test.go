package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{name: "name taken", err: pokemondomain.ErrNameTaken, wantStatus: http.StatusConflict, wantType: "conflict"},
		{name: "wrapped name taken", err: fmt.Errorf("create pokemon: %w", pokemondomain.ErrNameTaken), wantStatus: http.StatusConflict, wantType: "conflict"},
		{name: "not found", err: pokemondomain.ErrNotFound, wantStatus: http.StatusNotFound, wantType: "not_found"},
		{name: "gorm not found", err: gorm.ErrRecordNotFound, wantStatus: http.StatusNotFound, wantType: "not_found"},
		{name: "invalid id", err: pokemondomain.ErrInvalidID, wantStatus: http.StatusBadRequest, wantType: "validation_error"},
		{name: "rate limited", err: ErrRateLimited, wantStatus: http.StatusTooManyRequests, wantType: "rate_limited"},
		{name: "service unavailable", err: ErrServiceUnavailable, wantStatus: http.StatusServiceUnavailable, wantType: "service_unavailable"},
		{name: "unknown error", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantType: "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			if status != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, status)
			}
			if payload.Type != tc.wantType {
				t.Fatalf("expected type %q, got %q", tc.wantType, payload.Type)
			}
		})
	}
}

func TestMapErrorValidationEnvelope(t *testing.T) {
	status, payload := mapError(newValidationError("level", "invalid_level", "level must be between 1 and 100"))

	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if len(payload.Errors) != 1 {
		t.Fatalf("expected one entry, got %+v", payload.Errors)
	}
	entry := payload.Errors[0]
	if entry.Field != "level" || entry.Code != "invalid_level" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, errCode := classifyErrorForLog(pokemondomain.ErrInvalidID)
	if errType != "validation_error" || errCode != "invalid_id" {
		t.Fatalf("unexpected classification: %q %q", errType, errCode)
	}

	errType, errCode = classifyErrorForLog(pokemondomain.ErrNameTaken)
	if errType != "conflict" || errCode != "conflict" {
		t.Fatalf("unexpected classification: %q %q", errType, errCode)
	}
}
