package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lokanta/reservations/internal/availability"
	"github.com/lokanta/reservations/internal/repository"
	"github.com/lokanta/reservations/internal/service"
)

// ReservationHandler exposes the direct booking API.  All decisions live in
// the service; this layer binds requests and maps typed failures onto HTTP
// status codes.
type ReservationHandler struct {
	Service *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Service: svc}
}

// List handles GET /v1/reservations.  It returns up to 100 upcoming
// reservations in ascending start order, each with its table relation, plus
// the active tables in ascending capacity order.
func (h *ReservationHandler) List(c echo.Context) error {
	reservations, tables, err := h.Service.Board(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservations": reservations,
		"tables":       tables,
	})
}

// Create handles POST /v1/reservations.  Responses: 201 with the created
// reservation, 400 with field-level validation errors or a capacity
// violation, 404 when the table is missing or inactive, 409 on a scheduling
// conflict.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Service.BookDirect(c.Request().Context(), req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields})
		case errors.Is(err, repository.ErrTableNotFound), errors.Is(err, availability.ErrTableInactive):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, availability.ErrCapacityExceeded):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table capacity exceeded"})
		case errors.Is(err, availability.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table is already booked for this time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.Service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	return c.JSON(http.StatusOK, res)
}

// UpdateStatus handles PATCH /v1/reservations/:id/status.  Legal moves are
// confirmed→seated, confirmed→cancelled and seated→completed; anything else
// is a 409.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Service.UpdateStatus(c.Request().Context(), c.Param("id"), body.Status)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields})
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	return c.JSON(http.StatusOK, res)
}
