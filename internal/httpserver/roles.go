package httpserver

import (
	"net/http"
	"strconv"

	"github.com/fitnease/fitnease-auth/internal/middleware"
	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/labstack/echo/v4"
)

type RolesHTTP struct {
	Svc *service.RBACService
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

func (h *RolesHTTP) Index(c echo.Context) error {
	roles, err := h.Svc.Roles(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RolesHTTP) Create(c echo.Context) error {
	var req struct {
		Name        string `json:"role_name"`
		Description string `json:"role_description"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	role, err := h.Svc.CreateRole(c.Request().Context(), req.Name, req.Description, isActive)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RolesHTTP) Show(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role, err := h.Svc.Role(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RolesHTTP) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var upd service.RoleUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	role, err := h.Svc.UpdateRole(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RolesHTTP) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteRole(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Role deleted successfully"})
}

func (h *RolesHTTP) AssignRole(c echo.Context) error {
	var req struct {
		UserID uint `json:"user_id"`
		RoleID uint `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	actor := middleware.UserFromContext(c)
	edge, err := h.Svc.AssignRole(c.Request().Context(), req.UserID, req.RoleID, actor.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, edge)
}

func (h *RolesHTTP) RevokeRole(c echo.Context) error {
	var req struct {
		UserID uint `json:"user_id"`
		RoleID uint `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Svc.RevokeRole(c.Request().Context(), req.UserID, req.RoleID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Role revoked successfully"})
}

func (h *RolesHTTP) AssignPermission(c echo.Context) error {
	var req struct {
		RoleID       uint `json:"role_id"`
		PermissionID uint `json:"permission_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	actor := middleware.UserFromContext(c)
	edge, err := h.Svc.GrantPermission(c.Request().Context(), req.RoleID, req.PermissionID, actor.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, edge)
}

func (h *RolesHTTP) RevokePermission(c echo.Context) error {
	var req struct {
		RoleID       uint `json:"role_id"`
		PermissionID uint `json:"permission_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Svc.RevokePermission(c.Request().Context(), req.RoleID, req.PermissionID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Permission revoked successfully"})
}

func (h *RolesHTTP) UserRoles(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	roles, err := h.Svc.UserRoles(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RolesHTTP) RolePermissions(c echo.Context) error {
	roleID, err := pathID(c, "roleId")
	if err != nil {
		return err
	}
	perms, err := h.Svc.RolePermissions(c.Request().Context(), roleID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, perms)
}

func (h *RolesHTTP) Permissions(c echo.Context) error {
	perms, err := h.Svc.Permissions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, perms)
}

func (h *RolesHTTP) CreatePermission(c echo.Context) error {
	var req struct {
		Name        string `json:"permission_name"`
		Description string `json:"permission_description"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	p, err := h.Svc.CreatePermission(c.Request().Context(), req.Name, req.Description, isActive)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}
