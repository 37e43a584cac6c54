package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fitnease/fitnease-auth/internal/abilities"
	"github.com/fitnease/fitnease-auth/internal/middleware"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	RolesHandler *RolesHTTP
	UsersHandler *UsersHTTP
	AuthMw       *middleware.Auth
	Logger       *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	if d.Logger != nil {
		e.Use(requestLogger(d.Logger))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "ok",
			"service":   "fitnease-auth",
			"timestamp": time.Now().UTC(),
		})
	})

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/verify-email", d.AuthHandler.VerifyEmail)
	auth.POST("/verify-code", d.AuthHandler.VerifyCode)
	auth.POST("/resend-verification", d.AuthHandler.ResendVerification)
	auth.GET("/email-verification-status/:userId", d.AuthHandler.VerificationStatus)

	private := auth.Group("")
	private.Use(d.AuthMw.RequireAuth)
	private.GET("/user", d.AuthHandler.Me)
	private.GET("/validate", d.AuthHandler.Validate)
	private.POST("/refresh", d.AuthHandler.Refresh)
	private.DELETE("/logout", d.AuthHandler.Logout)
	private.DELETE("/logout-all", d.AuthHandler.LogoutAll)
	private.GET("/tokens", d.AuthHandler.Tokens)
	private.DELETE("/tokens/:id", d.AuthHandler.RevokeToken)
	private.GET("/user-profile/:id", d.UsersHandler.Show)

	verified := auth.Group("")
	verified.Use(d.AuthMw.RequireAuth, middleware.RequireVerified)
	verified.PUT("/user-profile/:id", d.UsersHandler.UpdateProfile)

	admin := e.Group("", d.AuthMw.RequireAuth, middleware.RequireAbility(abilities.AdminAccess))
	admin.POST("/auth/create-service-token", d.AuthHandler.CreateServiceToken)

	admin.GET("/roles", d.RolesHandler.Index)
	admin.POST("/roles", d.RolesHandler.Create)
	admin.GET("/roles/:id", d.RolesHandler.Show)
	admin.PUT("/roles/:id", d.RolesHandler.Update)
	admin.DELETE("/roles/:id", d.RolesHandler.Delete)
	admin.GET("/permissions", d.RolesHandler.Permissions)
	admin.POST("/permissions", d.RolesHandler.CreatePermission)
	admin.POST("/assign-role", d.RolesHandler.AssignRole)
	admin.POST("/revoke-role", d.RolesHandler.RevokeRole)
	admin.POST("/assign-permission", d.RolesHandler.AssignPermission)
	admin.POST("/revoke-permission", d.RolesHandler.RevokePermission)
	admin.GET("/users/:userId/roles", d.RolesHandler.UserRoles)
	admin.GET("/roles/:roleId/permissions", d.RolesHandler.RolePermissions)

	admin.GET("/all-users", d.UsersHandler.List)
	admin.GET("/users/:id", d.UsersHandler.Show)
	admin.PUT("/users/:id", d.UsersHandler.UpdateProfile)
	admin.DELETE("/users/:id", d.UsersHandler.Delete)
	admin.POST("/users/:id/activate", d.UsersHandler.Activate)
	admin.POST("/users/:id/deactivate", d.UsersHandler.Deactivate)
	admin.PUT("/users/:id/onboarding", d.UsersHandler.Onboarding)
	admin.GET("/users/:id/preferences", d.UsersHandler.Preferences)
	admin.PUT("/users/:id/preferences", d.UsersHandler.SetPreference)
	admin.GET("/users/:id/fitness-level", d.UsersHandler.FitnessLevel)
	admin.POST("/users/:id/assessments", d.UsersHandler.CreateAssessment)
	admin.GET("/users/:id/assessments", d.UsersHandler.Assessments)
	admin.PUT("/assessments/:assessmentId", d.UsersHandler.UpdateAssessment)
	admin.DELETE("/assessments/:assessmentId", d.UsersHandler.DeleteAssessment)
	admin.GET("/user-stats", d.UsersHandler.Stats)
	admin.POST("/bulk-update-users", d.UsersHandler.BulkUpdate)
}

// requestLogger seeds every request context with the service logger so
// handlers and services can pick it up via logging.FromContext.
func requestLogger(l *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logging.IntoContext(req.Context(), l.With(
				"method", req.Method,
				"path", req.URL.Path,
			))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
