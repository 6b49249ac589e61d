package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locketbot/backend/pkg/apperrors"
)

var statusByCode = map[apperrors.Code]int{
	apperrors.CodeInvalidArgument:  http.StatusBadRequest,
	apperrors.CodeNotFound:         http.StatusNotFound,
	apperrors.CodeUnauthorized:     http.StatusForbidden,
	apperrors.CodeInvalidStatus:    http.StatusConflict,
	apperrors.CodeAlreadyConnected: http.StatusConflict,
	apperrors.CodeAlreadyPending:   http.StatusConflict,
	apperrors.CodeBlocked:          http.StatusConflict,
	apperrors.CodeLimitReached:     http.StatusConflict,
	apperrors.CodeNoRecipients:     http.StatusUnprocessableEntity,
	apperrors.CodeRateLimited:      http.StatusTooManyRequests,
	apperrors.CodeUnavailable:      http.StatusServiceUnavailable,
}

// httpError maps a business error to its HTTP response. Anything without a
// known code is an unexpected collaborator failure and maps to 500.
func httpError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return echo.NewHTTPError(status, map[string]string{
			"code":    string(appErr.Code),
			"message": appErr.Message,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
