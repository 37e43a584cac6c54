package middleware

import (
	"net/http"
	"strings"

	"github.com/fitnease/fitnease-auth/internal/abilities"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/labstack/echo/v4"
)

const (
	ctxUser      = "user"
	ctxToken     = "token"
	ctxAbilities = "abilities"
)

type Auth struct {
	Svc *service.AuthService
}

func NewAuth(svc *service.AuthService) *Auth {
	return &Auth{Svc: svc}
}

// RequireAuth resolves the bearer token to an account and ability snapshot
// before the request reaches any handler.
func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		plain, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || plain == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
		}

		user, token, snapshot, err := a.Svc.Resolve(ctx, plain)
		if err != nil {
			l.Warn("token_rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		c.Set(ctxAbilities, snapshot)
		return next(c)
	}
}

// RequireAbility gates a route on an ability from the token snapshot. No
// database read happens here.
func RequireAbility(ability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snapshot, _ := c.Get(ctxAbilities).([]string)
			if !abilities.Contains(snapshot, ability) {
				return echo.NewHTTPError(http.StatusForbidden, "unauthorized")
			}
			return next(c)
		}
	}
}

// RequireVerified gates a route on the account having a verified email.
func RequireVerified(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil || user.EmailVerifiedAt == nil {
			return echo.NewHTTPError(http.StatusForbidden, "email not verified")
		}
		return next(c)
	}
}

func UserFromContext(c echo.Context) *models.User {
	user, _ := c.Get(ctxUser).(*models.User)
	return user
}

func TokenFromContext(c echo.Context) *models.AccessToken {
	token, _ := c.Get(ctxToken).(*models.AccessToken)
	return token
}

func AbilitiesFromContext(c echo.Context) []string {
	snapshot, _ := c.Get(ctxAbilities).([]string)
	return snapshot
}
