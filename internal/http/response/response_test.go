package response

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "github.com/booktrackerapp/booktracker-server/internal/errors"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"isbn": "9780441478125"}, nil)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type: got %q", ct)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success=true")
	}
	if env.Error != "" {
		t.Errorf("unexpected error: %q", env.Error)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "tracked search not found", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Error != "tracked search not found" {
		t.Errorf("error: got %q", env.Error)
	}
}

func TestHandleErrorDomain(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domainerrors.Validation("please enter a valid ISBN-10 or ISBN-13"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "please enter a valid ISBN-10 or ISBN-13" {
		t.Errorf("error: got %q", env.Error)
	}
}

func TestHandleErrorDomainDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := domainerrors.ValidationWithDetails("validation failed", map[string]string{"email": "must be a valid email address"})
	HandleError(rec, err, nil)

	env := decodeEnvelope(t, rec)
	if env.Details == nil {
		t.Error("expected details to survive the envelope")
	}
}

func TestHandleErrorStore(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, store.ErrAlreadyExists, nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, http.ErrBodyNotAllowed, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "internal server error" {
		t.Errorf("unknown errors must not leak, got %q", env.Error)
	}
}
