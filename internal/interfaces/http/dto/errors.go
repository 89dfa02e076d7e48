package dto

import (
	"net/http"

	"github.com/erp/retail/internal/domain/shared"
)

// Codes produced by the HTTP layer itself. Domain failures keep the code of
// their shared.DomainError.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,

	shared.CodeValidation:            http.StatusBadRequest,
	shared.CodeDuplicateLineItemType: http.StatusBadRequest,

	shared.CodeForbidden: http.StatusForbidden,
	shared.CodeNotFound:  http.StatusNotFound,

	shared.CodeAlreadyExists:     http.StatusConflict,
	shared.CodeDrawerAlreadyOpen: http.StatusConflict,
	shared.CodeDrawerNotOpen:     http.StatusConflict,
	shared.CodeAlreadyClosed:     http.StatusConflict,
	shared.CodeOptimisticLock:    http.StatusConflict,
	shared.CodeLockNotObtained:   http.StatusConflict,

	shared.CodeInsufficientStock:       http.StatusUnprocessableEntity,
	shared.CodeInvalidInstallments:     http.StatusUnprocessableEntity,
	shared.CodeInvalidStatusTransition: http.StatusUnprocessableEntity,
}

// ErrorCodeToHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func ErrorCodeToHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
