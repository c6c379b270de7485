package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/labstack/echo/v4"
)

// response is the envelope of every /auth answer and of all error answers.
type response struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	ExpiresIn   int64  `json:"expiresIn,omitempty"`
}

// statusFor maps service errors onto an HTTP status and a user facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, common.ErrorInvalidCode):
		return http.StatusBadRequest, "Invalid or expired code"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Access token expired"
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, "Session expired, please sign in again"
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorNotVerified):
		return http.StatusForbidden, "Please verify your email before signing in"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, common.ErrorAlreadyVerified):
		return http.StatusConflict, "Account already verified"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := http.StatusInternalServerError, "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		code, msg = statusFor(err)
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "error", err, "path", c.Path())
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, response{Error: msg})
	}
	if err != nil {
		s.logger.Warn(context.Background(), "cannot write error response", "error", err)
	}
}
