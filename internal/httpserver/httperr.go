package httpserver

import (
	"errors"
	"net/http"

	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/labstack/echo/v4"
)

// httpError translates the service error taxonomy to a status code and a
// structured error body. Unknown errors degrade to a generic 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrDuplicateIdentity),
		errors.Is(err, service.ErrInvalidVerificationToken),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrAlreadyAssigned),
		errors.Is(err, service.ErrNotAssigned),
		errors.Is(err, service.ErrAlreadyGranted),
		errors.Is(err, service.ErrNotGranted):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrEmailUnverified),
		errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrTokenNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
