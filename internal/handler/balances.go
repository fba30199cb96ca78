package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

type BalancesHandler struct{ svc service.LedgerService }

func NewBalancesHandler(svc service.LedgerService) *BalancesHandler {
	return &BalancesHandler{svc: svc}
}

// Get returns the current balances. Managers see only the shop balance;
// the bank figure is omitted from their response entirely.
func (h *BalancesHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.GetBalances(c.Request.Context(), claims.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
