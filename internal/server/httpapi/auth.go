package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/labstack/echo/v4"
)

const codeLength = 6

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (s *Server) signup(c echo.Context) (err error) {
	defer func() { recordAuth("signup", err) }()

	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.users.Signup(c.Request().Context(), req.Email, []byte(req.Password), req.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, response{OK: true, Message: "Account created. Check your email for a verification code."})
}

func (s *Server) verify(c echo.Context) (err error) {
	defer func() { recordAuth("verify", err) }()

	var req verifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.users.Verify(c.Request().Context(), req.Email, req.Code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{OK: true, Message: "Email verified. You can now sign in."})
}

func (s *Server) resendCode(c echo.Context) (err error) {
	defer func() { recordAuth("resend_code", err) }()

	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.users.ResendCode(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{OK: true, Message: "If the account exists, a new code has been sent."})
}

func (s *Server) forgotPassword(c echo.Context) (err error) {
	defer func() { recordAuth("forgot_password", err) }()

	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.users.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{OK: true, Message: "If the account exists, a reset code has been sent."})
}

func (s *Server) resetPassword(c echo.Context) (err error) {
	defer func() { recordAuth("reset_password", err) }()

	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.users.ResetPassword(c.Request().Context(), req.Email, req.Code, []byte(req.Password)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{OK: true, Message: "Password updated. Please sign in again."})
}

func (s *Server) login(c echo.Context) (err error) {
	defer func() { recordAuth("login", err) }()

	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := s.users.Login(c.Request().Context(), req.Email, []byte(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}

	c.SetCookie(s.refreshCookie(pair.RefreshToken, int(s.refreshTokenTTL.Seconds())))
	return c.JSON(http.StatusOK, response{
		OK:          true,
		AccessToken: pair.AccessToken,
		ExpiresIn:   int64(pair.ExpiresIn.Seconds()),
	})
}

// refresh issues a new access token for the session in the refresh cookie.
// A rejected session also clears the cookie.
func (s *Server) refresh(c echo.Context) (err error) {
	defer func() { recordAuth("refresh", err) }()

	cookie, err := c.Cookie(common.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not signed in")
	}

	at, err := s.users.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			c.SetCookie(s.refreshCookie("", -1))
		}
		return err
	}

	return c.JSON(http.StatusOK, response{
		OK:          true,
		AccessToken: at.Token,
		ExpiresIn:   int64(at.ExpiresIn.Seconds()),
	})
}

func (s *Server) logout(c echo.Context) (err error) {
	defer func() { recordAuth("logout", err) }()

	var token string
	if cookie, err := c.Cookie(common.RefreshCookieName); err == nil {
		token = cookie.Value
	}

	if err := s.users.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	c.SetCookie(s.refreshCookie("", -1))
	return c.JSON(http.StatusOK, response{OK: true, Message: "Signed out"})
}

func (s *Server) refreshCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.RefreshCookieName,
		Value:    value,
		Path:     common.RefreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
