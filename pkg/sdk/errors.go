package vecgate

import (
	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/fault"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrNamespaceMismatch      = domain.ErrNamespaceMismatch
	ErrEngineUnavailable      = domain.ErrEngineUnavailable
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)

// Status is the HTTP form of an error, as the gateway reports it.
type Status struct {
	HTTPStatus int
	Code       string
	Message    string
}

// StatusOf classifies err the way the gateway does. Engine failures keep the
// backend's message; unexpected errors get a generic one.
func StatusOf(err error) Status {
	f := fault.Translate(err)
	return Status{HTTPStatus: f.Status, Code: f.Code, Message: f.Message}
}
