package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

func TestTranslate_EngineCodes(t *testing.T) {
	tests := []struct {
		code       codes.Code
		msg        string
		wantStatus int
		wantCode   string
	}{
		{codes.InvalidArgument, "Vector dimension mismatch", http.StatusBadRequest, CodeInvalidArgument},
		{codes.NotFound, "Namespace not found", http.StatusNotFound, CodeNotFound},
		{codes.Unavailable, "connection refused", http.StatusServiceUnavailable, CodeEngineUnavailable},
		{codes.Internal, "boom", http.StatusInternalServerError, CodeEngineError},
		{codes.DeadlineExceeded, "deadline", http.StatusInternalServerError, CodeEngineError},
		{codes.PermissionDenied, "nope", http.StatusInternalServerError, CodeEngineError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := fmt.Errorf("engine query: %w", status.Error(tt.code, tt.msg))
			f := Translate(err)
			if f.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", f.Status, tt.wantStatus)
			}
			if f.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", f.Code, tt.wantCode)
			}
			if f.Message != tt.msg {
				t.Errorf("Message = %q, want backend detail %q", f.Message, tt.msg)
			}
		})
	}
}

func TestTranslate_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			"validation",
			domain.NewValidationError("", "Provide exactly one of 'text' or 'vector'"),
			http.StatusUnprocessableEntity, CodeValidationFailed,
			"Provide exactly one of 'text' or 'vector'",
		},
		{
			"namespace mismatch",
			fmt.Errorf("normalize: %w", &domain.NamespaceMismatchError{Index: 1, Expected: "a", Got: "b"}),
			http.StatusBadRequest, CodeNamespaceMismatch,
			"All vectors must share namespace",
		},
		{
			"quota",
			fmt.Errorf("embed: %w", domain.ErrEmbeddingQuotaExceeded),
			http.StatusPaymentRequired, CodeQuotaExceeded,
			"embedding quota exceeded",
		},
		{
			"engine unavailable",
			fmt.Errorf("connect: %w", domain.ErrEngineUnavailable),
			http.StatusServiceUnavailable, CodeEngineUnavailable,
			"engine unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Translate(tt.err)
			if f.Status != tt.wantStatus || f.Code != tt.wantCode || f.Message != tt.wantMsg {
				t.Errorf("Translate() = %+v, want {%d %q %q}", f, tt.wantStatus, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestTranslate_UnexpectedHidesDetail(t *testing.T) {
	err := fmt.Errorf("embed: %w", errors.New("model weights corrupted at /secret/path"))
	f := Translate(err)
	if f.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", f.Status)
	}
	if f.Message != "internal error" {
		t.Errorf("Message leaked detail: %q", f.Message)
	}
	if !f.Internal() {
		t.Error("expected Internal() = true")
	}
}

func TestTranslate_ProviderErrorIsInternal(t *testing.T) {
	f := Translate(fmt.Errorf("%w: HTTP 500", domain.ErrEmbeddingProviderError))
	if f.Status != http.StatusInternalServerError || f.Code != CodeInternal {
		t.Errorf("Translate() = %+v, want internal 500", f)
	}
}
