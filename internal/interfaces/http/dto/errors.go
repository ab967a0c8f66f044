package dto

import (
	"net/http"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Transport-level error codes. Domain error codes travel through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// KindRateLimited is a transport-only kind for throttled requests
const KindRateLimited shared.ErrorKind = "RATE_LIMITED"

// kindStatus maps each error kind to its HTTP status
var kindStatus = map[shared.ErrorKind]int{
	shared.KindValidation:      http.StatusBadRequest,
	shared.KindNotFound:        http.StatusNotFound,
	shared.KindAuthorization:   http.StatusForbidden,
	shared.KindUnauthenticated: http.StatusUnauthorized,
	shared.KindConflict:        http.StatusConflict,
	shared.KindUpstreamFetch:   http.StatusBadGateway,
	shared.KindParse:           http.StatusUnprocessableEntity,
	shared.KindInternal:        http.StatusInternalServerError,
	KindRateLimited:            http.StatusTooManyRequests,
}

// StatusForKind returns the HTTP status for an error kind.
// Unknown kinds map to 500.
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
