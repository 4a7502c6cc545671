package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lokanta/reservations/internal/repository"
)

// TableHandler exposes the one mutation tables support after setup:
// toggling the active flag.  Tables are deactivated rather than deleted so
// past reservations keep a valid reference.
type TableHandler struct {
	Tables *repository.TableRepo
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(tables *repository.TableRepo) *TableHandler {
	if tables == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables}
}

// SetActive handles PATCH /v1/tables/:id/active with body {"isActive": bool}.
func (h *TableHandler) SetActive(c echo.Context) error {
	var body struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.Bind(&body); err != nil || body.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "isActive is required"})
	}
	if err := h.Tables.SetActive(c.Request().Context(), c.Param("id"), *body.IsActive); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table"})
	}
	table, err := h.Tables.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch table"})
	}
	return c.JSON(http.StatusOK, table)
}
