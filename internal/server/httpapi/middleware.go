package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// requireUser accepts requests carrying a valid bearer access token and
// stores the user id in the echo context.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
		}

		userID, err := s.users.UserIDFromAccessToken(strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
