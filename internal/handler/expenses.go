package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpensesHandler struct {
	svc          service.LedgerService
	defaultLimit int
}

func NewExpensesHandler(svc service.LedgerService, defaultLimit int) *ExpensesHandler {
	return &ExpensesHandler{svc: svc, defaultLimit: defaultLimit}
}

// Record registers an expense against the shop balance (cash portion) and
// the bank balance (online portion). Only owners may spend from the bank.
func (h *ExpensesHandler) Record(c *gin.Context) {
	var req dto.RecordExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordExpense(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ExpensesHandler) List(c *gin.Context) {
	limit := queryLimit(c, h.defaultLimit)
	resp, err := h.svc.ListExpenses(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
