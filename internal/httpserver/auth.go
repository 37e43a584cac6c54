package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fitnease/fitnease-auth/internal/middleware"
	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful. Please check your email for verification.",
		"user_id": user.ID,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":       res.User,
		"token":      res.Token,
		"abilities":  res.Abilities,
		"expires_at": res.ExpiresAt,
	})
}

func (h *AuthHTTP) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.VerifyByToken(ctx, c.QueryParam("token")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully"})
}

func (h *AuthHTTP) VerifyCode(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.VerifyByCode(ctx, req.Email, req.Code)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Email verified successfully with code",
		"user":       res.User,
		"token":      res.Token,
		"abilities":  res.Abilities,
		"expires_at": res.ExpiresAt,
	})
}

func (h *AuthHTTP) ResendVerification(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResendVerification(ctx, req.Email); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification email sent"})
}

func (h *AuthHTTP) VerificationStatus(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	verified, at, err := h.Svc.VerificationStatus(ctx, uint(userID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"email_verified":    verified,
		"email_verified_at": at,
	})
}

// Me returns the account resolved by the auth middleware.
func (h *AuthHTTP) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.UserFromContext(c))
}

// Validate echoes the decoded identity and ability snapshot for the
// presented token.
func (h *AuthHTTP) Validate(c echo.Context) error {
	user := middleware.UserFromContext(c)
	token := middleware.TokenFromContext(c)

	return c.JSON(http.StatusOK, echo.Map{
		"valid":          true,
		"user_id":        user.ID,
		"email":          user.Email,
		"email_verified": user.EmailVerifiedAt != nil,
		"abilities":      middleware.AbilitiesFromContext(c),
		"token_name":     token.Name,
		"last_used_at":   token.LastUsedAt,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	token := middleware.TokenFromContext(c)
	if err := h.Svc.Logout(ctx, token.ID); err != nil {
		l.Error("logout_failed", "error", err)
		return httpError(err)
	}
	l.Info("logout_successful", "user_id", token.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHTTP) LogoutAll(c echo.Context) error {
	ctx := c.Request().Context()

	user := middleware.UserFromContext(c)
	if _, err := h.Svc.LogoutAll(ctx, user.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out from all devices"})
}

func (h *AuthHTTP) Tokens(c echo.Context) error {
	ctx := c.Request().Context()

	user := middleware.UserFromContext(c)
	list, err := h.Svc.Tokens(ctx, user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AuthHTTP) RevokeToken(c echo.Context) error {
	ctx := c.Request().Context()

	tokenID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid token id")
	}

	user := middleware.UserFromContext(c)
	if err := h.Svc.RevokeUserToken(ctx, user.ID, uint(tokenID)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Token revoked successfully"})
}

// Refresh rotates the presented token: the old secret stops resolving, the
// new one carries the same ability snapshot.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	plain, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	res, err := h.Svc.Refresh(ctx, plain)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      res.Token,
		"abilities":  res.Abilities,
		"expires_at": res.ExpiresAt,
	})
}

func (h *AuthHTTP) CreateServiceToken(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ServiceName string   `json:"service_name"`
		Abilities   []string `json:"abilities"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, granted, err := h.Svc.CreateServiceToken(ctx, req.ServiceName, req.Abilities)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"service_token": token,
		"abilities":     granted,
	})
}
