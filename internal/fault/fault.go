// Package fault translates gateway and engine failures into public HTTP errors.
package fault

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Public error codes.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeNamespaceMismatch = "namespace_mismatch"
	CodeInvalidArgument   = "invalid_argument"
	CodeNotFound          = "not_found"
	CodeEngineUnavailable = "engine_unavailable"
	CodeEngineError       = "engine_error"
	CodeQuotaExceeded     = "embedding_quota_exceeded"
	CodeInternal          = "internal_error"
)

// Fault is the public shape of a failure.
type Fault struct {
	Status  int
	Code    string
	Message string
}

// Internal reports whether the fault hides an unexpected failure.
func (f Fault) Internal() bool { return f.Code == CodeInternal }

// grpcStatus matches errors carrying a gRPC status, wrapped or not.
type grpcStatus interface{ GRPCStatus() *status.Status }

// Translate maps err to a Fault. Engine statuses keep the backend message
// verbatim; unexpected errors get a generic message.
func Translate(err error) Fault {
	var ve *domain.ValidationError
	var gs grpcStatus

	switch {
	case errors.As(err, &ve):
		return Fault{Status: http.StatusUnprocessableEntity, Code: CodeValidationFailed, Message: ve.Error()}
	case errors.Is(err, domain.ErrValidation):
		return Fault{Status: http.StatusUnprocessableEntity, Code: CodeValidationFailed, Message: domain.ErrValidation.Error()}
	case errors.Is(err, domain.ErrNamespaceMismatch):
		return Fault{Status: http.StatusBadRequest, Code: CodeNamespaceMismatch, Message: "All vectors must share namespace"}
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return Fault{Status: http.StatusPaymentRequired, Code: CodeQuotaExceeded, Message: domain.ErrEmbeddingQuotaExceeded.Error()}
	case errors.Is(err, domain.ErrEngineUnavailable):
		return Fault{Status: http.StatusServiceUnavailable, Code: CodeEngineUnavailable, Message: domain.ErrEngineUnavailable.Error()}
	case errors.As(err, &gs) && gs.GRPCStatus() != nil:
		return FromStatus(gs.GRPCStatus())
	default:
		return Fault{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal error"}
	}
}

// FromStatus maps a gRPC status code to an HTTP fault.
func FromStatus(st *status.Status) Fault {
	f := Fault{Message: st.Message()}
	switch st.Code() {
	case codes.InvalidArgument:
		f.Status, f.Code = http.StatusBadRequest, CodeInvalidArgument
	case codes.NotFound:
		f.Status, f.Code = http.StatusNotFound, CodeNotFound
	case codes.Unavailable:
		f.Status, f.Code = http.StatusServiceUnavailable, CodeEngineUnavailable
	default:
		f.Status, f.Code = http.StatusInternalServerError, CodeEngineError
	}
	return f
}
