package reporting

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fetch46/care-coord-suite/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "billing"))

	g.POST("/expenses", h.RecordExpense)
	g.GET("/expenses", h.ListExpenses)
	g.GET("/expenses/:id", h.GetExpense)
	g.DELETE("/expenses/:id", h.DeleteExpense)

	g.GET("/reports/revenue-by-period", h.RevenueByPeriod)
	g.GET("/reports/revenue-by-patient", h.RevenueByPatient)
}

// parseRange reads start/end query params (YYYY-MM-DD). The default range
// is the trailing twelve months.
func parseRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(-1, 0, 0)
	end := now

	if v := c.QueryParam("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid start date")
		}
		start = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid end date")
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "end date precedes start date")
	}
	return start, end, nil
}

func (h *Handler) RecordExpense(c echo.Context) error {
	var e Expense
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.RecordExpense(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetExpense(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "expense not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteExpense(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "expense not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListExpenses(c echo.Context) error {
	start, end, err := parseRange(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListExpenses(c.Request().Context(), c.QueryParam("category"), start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) RevenueByPeriod(c echo.Context) error {
	start, end, err := parseRange(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.RevenueByPeriod(c.Request().Context(), start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) RevenueByPatient(c echo.Context) error {
	start, end, err := parseRange(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.RevenueByPatient(c.Request().Context(), start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
