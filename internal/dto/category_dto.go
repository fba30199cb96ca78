package dto

type AddCategoryRequest struct {
	Price int64 `json:"price" validate:"required,gt=0"`
	Stock int   `json:"stock" validate:"min=0"`
}

type AdjustStockRequest struct {
	// Delta may be negative; the adjustment is rejected if it would take
	// stock below zero.
	Delta int `json:"delta" validate:"required"`
}

type AdjustPriceRequest struct {
	Price int64 `json:"price" validate:"required,gt=0"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
	CreatedAt string `json:"created_at"`
}
