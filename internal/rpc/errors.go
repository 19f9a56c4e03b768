// README: RPC error envelope; maps module sentinels onto stable codes.
package rpc

import (
	"errors"

	"smartride/internal/modules/intent"
	"smartride/internal/modules/providers"
	"smartride/internal/modules/rides"
	"smartride/internal/pipeline"
)

// Stable error codes the presentation layer can render without re-deriving
// intent.
const (
	CodeIntentParse         = "INTENT_PARSE_ERROR"
	CodeInvalidTime         = "INVALID_TIME"
	CodeNoAvailability      = "NO_AVAILABILITY"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeAlreadyCancelled    = "ALREADY_CANCELLED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeMethodNotFound      = "METHOD_NOT_FOUND"
	CodeInternal            = "INTERNAL"
)

type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// codeFor maps a pipeline error to its taxonomy code. Provider- and
// weather-level failures never reach here; they are absorbed upstream.
func codeFor(err error) string {
	switch {
	case errors.Is(err, intent.ErrUpstreamUnavailable):
		return CodeUpstreamUnavailable
	case errors.Is(err, intent.ErrIntentParse):
		return CodeIntentParse
	case errors.Is(err, intent.ErrInvalidTime), errors.Is(err, rides.ErrInvalidTime):
		return CodeInvalidTime
	case errors.Is(err, providers.ErrNoAvailability):
		return CodeNoAvailability
	case errors.Is(err, rides.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, rides.ErrAlreadyCancelled):
		return CodeAlreadyCancelled
	case errors.Is(err, rides.ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, pipeline.ErrActionMismatch):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}
