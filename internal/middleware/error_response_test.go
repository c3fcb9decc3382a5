package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tasuku/internal/model"
)

func TestWriteErrorResponse_WritesDetailBody(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, model.NewTodoNotFoundError())

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "Todo not found" {
		t.Errorf("detail = %q, want %q", body.Detail, "Todo not found")
	}
	if len(body.Fields) != 0 {
		t.Errorf("fields should be empty, got %v", body.Fields)
	}
}

func TestWriteErrorResponse_ValidationError_IncludesFields(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, model.NewValidationError("title must be a non-empty string", "title"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[0] != "title" {
		t.Errorf("fields = %v, want [title]", body.Fields)
	}
}

func TestWriteInternalServerError_GenericMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "internal server error" {
		t.Errorf("detail = %q, want %q", body.Detail, "internal server error")
	}
}
