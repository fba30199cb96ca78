package service

import (
	"context"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/feed"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"

	"github.com/google/uuid"
)

// InventoryService manages price categories. Category mutations touch only
// stock counters, never balances; removing a category leaves historical sale
// items intact because they carry their own price/stock snapshot.
type InventoryService interface {
	AddCategory(ctx context.Context, actorID uuid.UUID, req dto.AddCategoryRequest) (*dto.CategoryResponse, error)
	RemoveCategory(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*dto.CategoryResponse, error)
	AdjustPrice(ctx context.Context, id uuid.UUID, price int64) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
}

type inventoryService struct {
	categories repository.CategoryRepository
	pub        feed.Publisher
}

func NewInventoryService(categories repository.CategoryRepository, pub feed.Publisher) InventoryService {
	if pub == nil {
		pub = feed.NopPublisher{}
	}
	return &inventoryService{categories: categories, pub: pub}
}

func (s *inventoryService) AddCategory(ctx context.Context, actorID uuid.UUID, req dto.AddCategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := s.categories.FindByPrice(ctx, req.Price); err == nil {
		return nil, ErrDuplicatePrice
	}
	cat := &model.PriceCategory{
		Price:     req.Price,
		Stock:     req.Stock,
		CreatedBy: actorID,
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, feed.Event{Stream: feed.StreamCategories, Action: "insert", EntityID: cat.ID.String()})
	return categoryToResponse(cat), nil
}

func (s *inventoryService) RemoveCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return ErrCategoryNotFound
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.pub.Publish(ctx, feed.Event{Stream: feed.StreamCategories, Action: "delete", EntityID: id.String()})
	return nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*dto.CategoryResponse, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	if cat.Stock+delta < 0 {
		return nil, &InsufficientStockError{
			CategoryID: cat.ID,
			Price:      cat.Price,
			Requested:  -delta,
			Available:  cat.Stock,
		}
	}
	cat.Stock += delta
	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, feed.Event{Stream: feed.StreamCategories, Action: "update", EntityID: cat.ID.String()})
	return categoryToResponse(cat), nil
}

func (s *inventoryService) AdjustPrice(ctx context.Context, id uuid.UUID, price int64) (*dto.CategoryResponse, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	if existing, err := s.categories.FindByPrice(ctx, price); err == nil && existing.ID != cat.ID {
		return nil, ErrDuplicatePrice
	}
	cat.Price = price
	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, feed.Event{Stream: feed.StreamCategories, Action: "update", EntityID: cat.ID.String()})
	return categoryToResponse(cat), nil
}

func (s *inventoryService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoryResponse, 0, len(cats))
	for i := range cats {
		resp = append(resp, *categoryToResponse(&cats[i]))
	}
	return resp, nil
}

func categoryToResponse(c *model.PriceCategory) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:        c.ID.String(),
		Price:     c.Price,
		Stock:     c.Stock,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
