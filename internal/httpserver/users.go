package httpserver

import (
	"net/http"
	"strconv"

	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/labstack/echo/v4"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) List(c echo.Context) error {
	q := service.ListUsersQuery{Search: c.QueryParam("search")}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	if v := c.QueryParam("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_active")
		}
		q.IsActive = &b
	}
	if v := c.QueryParam("email_verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid email_verified")
		}
		q.EmailVerified = &b
	}

	page, err := h.Svc.ListUsers(c.Request().Context(), q)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *UsersHTTP) Show(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.Svc.User(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) UpdateProfile(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var upd service.ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.UpdateProfile(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteUser(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

func (h *UsersHTTP) Activate(c echo.Context) error {
	return h.setActive(c, true, "User activated successfully")
}

func (h *UsersHTTP) Deactivate(c echo.Context) error {
	return h.setActive(c, false, "User deactivated successfully")
}

func (h *UsersHTTP) setActive(c echo.Context, active bool, message string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.Svc.SetActive(c.Request().Context(), id, active); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

func (h *UsersHTTP) Onboarding(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		OnboardingCompleted *bool `json:"onboarding_completed"`
	}
	if err := c.Bind(&req); err != nil || req.OnboardingCompleted == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "onboarding_completed is required")
	}
	user, err := h.Svc.SetOnboarding(c.Request().Context(), id, *req.OnboardingCompleted)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Stats(c echo.Context) error {
	stats, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *UsersHTTP) BulkUpdate(c echo.Context) error {
	var upd service.BulkUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	count, err := h.Svc.BulkUpdateUsers(c.Request().Context(), upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Users updated successfully",
		"updated_count": count,
	})
}

func (h *UsersHTTP) Preferences(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	prefs, err := h.Svc.Preferences(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *UsersHTTP) SetPreference(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Key   string `json:"preference_key"`
		Value string `json:"preference_value"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	pref, err := h.Svc.SetPreference(c.Request().Context(), id, req.Key, req.Value)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pref)
}

func (h *UsersHTTP) CreateAssessment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.AssessmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	a, err := h.Svc.CreateAssessment(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *UsersHTTP) Assessments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Svc.Assessments(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UsersHTTP) UpdateAssessment(c echo.Context) error {
	id, err := pathID(c, "assessmentId")
	if err != nil {
		return err
	}
	var in service.AssessmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	a, err := h.Svc.UpdateAssessment(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *UsersHTTP) DeleteAssessment(c echo.Context) error {
	id, err := pathID(c, "assessmentId")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteAssessment(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Assessment deleted successfully"})
}

// FitnessLevel returns the level projected from the latest assessment.
func (h *UsersHTTP) FitnessLevel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.Svc.User(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	level, err := h.Svc.FitnessLevel(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "fitness_level": level})
}
