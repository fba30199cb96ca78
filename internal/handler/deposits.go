package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

type DepositsHandler struct {
	svc          service.LedgerService
	defaultLimit int
}

func NewDepositsHandler(svc service.LedgerService, defaultLimit int) *DepositsHandler {
	return &DepositsHandler{svc: svc, defaultLimit: defaultLimit}
}

// Record moves cash from the shop drawer to the bank. The two balances move
// in the same transaction, so their sum is conserved.
func (h *DepositsHandler) Record(c *gin.Context) {
	var req dto.RecordDepositRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordDeposit(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DepositsHandler) List(c *gin.Context) {
	limit := queryLimit(c, h.defaultLimit)
	resp, err := h.svc.ListDeposits(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
