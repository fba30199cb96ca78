package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoriesHandler struct{ svc service.InventoryService }

func NewCategoriesHandler(svc service.InventoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

// List returns every price tier ordered by price ascending.
func (h *CategoriesHandler) List(c *gin.Context) {
	resp, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Add creates a new price tier. Prices are unique across tiers.
func (h *CategoriesHandler) Add(c *gin.Context) {
	var req dto.AddCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AddCategory(c.Request.Context(), actorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Remove deletes a price tier. Historical sales keep their snapshotted
// prices, so removal never rewrites the books.
func (h *CategoriesHandler) Remove(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveCategory(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock applies a signed delta to a tier's stock count.
func (h *CategoriesHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustPrice changes a tier's price going forward.
func (h *CategoriesHandler) AdjustPrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustPrice(c.Request.Context(), id, req.Price)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
