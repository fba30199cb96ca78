package handler

import (
	"net/http"
	"strconv"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc          service.LedgerService
	defaultLimit int
}

func NewSalesHandler(svc service.LedgerService, defaultLimit int) *SalesHandler {
	return &SalesHandler{svc: svc, defaultLimit: defaultLimit}
}

// Record registers a sale atomically: stock is decremented, the shop and
// bank balances are credited, and the line items are snapshotted at the
// price in effect right now. Any failure leaves all three untouched.
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordSale(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns the most recent sales, newest first.
func (h *SalesHandler) List(c *gin.Context) {
	limit := queryLimit(c, h.defaultLimit)
	resp, err := h.svc.ListSales(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// queryLimit reads ?limit= with a fallback, capped to keep payloads sane.
func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > 200 {
		n = 200
	}
	return n
}
