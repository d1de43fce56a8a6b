package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fetch46/care-coord-suite/internal/platform/auth"
	"github.com/fetch46/care-coord-suite/internal/platform/search"
	"github.com/fetch46/care-coord-suite/pkg/money"
	"github.com/fetch46/care-coord-suite/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "billing"))

	g.POST("/invoices", h.CreateInvoice)
	g.POST("/invoices/preview", h.PreviewInvoice)
	g.GET("/invoices", h.ListInvoices)
	g.GET("/invoices/:id", h.GetInvoice)
	g.GET("/invoices/:id/payments", h.ListInvoicePayments)
	g.GET("/invoices/:id/balance", h.GetInvoiceBalance)
	g.POST("/invoices/:id/send", h.SendInvoice)
	g.POST("/invoices/:id/cancel", h.CancelInvoice)
	g.POST("/invoices/mark-overdue", h.MarkOverdue)

	g.POST("/payments", h.RecordPayment)
	g.GET("/payments/:id", h.GetPayment)
	g.POST("/payments/:id/refund", h.RefundPayment)
}

// httpError maps domain errors onto HTTP status codes.
func httpError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve)
	}
	var oe *OverpaymentError
	if errors.As(err, &oe) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, oe.Error())
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, ErrNumberConflict),
		errors.Is(err, ErrInvoiceClosed),
		errors.Is(err, ErrNotReversible):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrLastItem),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, money.ErrInvalidAmount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// -- Invoice Handlers --

func (h *Handler) CreateInvoice(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.CreateInvoice(c.Request().Context(), &d)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// PreviewInvoice returns the computed totals for a draft without creating
// anything. The UI calls this as line items change.
func (h *Handler) PreviewInvoice(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	totals, err := h.svc.PreviewTotals(&d)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, totals)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	param := c.Param("id")
	id, err := uuid.Parse(param)
	if err != nil {
		inv, err := h.svc.GetInvoiceByNumber(c.Request().Context(), param)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, inv)
	}
	inv, err := h.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	pg := pagination.FromContext(c)
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListInvoicesByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.SearchInvoices(c.Request().Context(), search.ExtractParams(c), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListInvoicePayments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListPaymentsByInvoice(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetInvoiceBalance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	balance, err := h.svc.InvoiceBalance(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoice_id": id,
		"balance":    balance,
	})
}

func (h *Handler) SendInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.SendInvoice(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CancelInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.CancelInvoice(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkOverdue(c echo.Context) error {
	n, err := h.svc.MarkOverdueInvoices(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": n})
}

// -- Payment Handlers --

func (h *Handler) RecordPayment(c echo.Context) error {
	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordPayment(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPayment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) RefundPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.RefundPayment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
