package service_test

import (
	"context"
	"testing"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCategory_RejectsDuplicatePrice(t *testing.T) {
	cats := newStubCategoryRepo()
	svc := service.NewInventoryService(cats, nil)
	actor := uuid.New()

	first, err := svc.AddCategory(context.Background(), actor, dto.AddCategoryRequest{Price: 149, Stock: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(149), first.Price)

	_, err = svc.AddCategory(context.Background(), actor, dto.AddCategoryRequest{Price: 149, Stock: 5})
	require.ErrorIs(t, err, service.ErrDuplicatePrice)
}

func TestAdjustStock_FloorsAtZero(t *testing.T) {
	cats := newStubCategoryRepo()
	tier := cats.add(149, 3)
	svc := service.NewInventoryService(cats, nil)

	resp, err := svc.AdjustStock(context.Background(), tier, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Stock)

	_, err = svc.AdjustStock(context.Background(), tier, -1)
	var stockErr *service.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)

	// Still zero after the rejected adjustment.
	got, _ := cats.FindByID(context.Background(), tier)
	assert.Equal(t, 0, got.Stock)
}

func TestAdjustPrice_AllowsSelfAndRejectsCollision(t *testing.T) {
	cats := newStubCategoryRepo()
	tier149 := cats.add(149, 3)
	cats.add(200, 1)
	svc := service.NewInventoryService(cats, nil)

	// Re-asserting the same price on the same tier is a no-op, not a duplicate.
	resp, err := svc.AdjustPrice(context.Background(), tier149, 149)
	require.NoError(t, err)
	assert.Equal(t, int64(149), resp.Price)

	_, err = svc.AdjustPrice(context.Background(), tier149, 200)
	require.ErrorIs(t, err, service.ErrDuplicatePrice)
}

func TestRemoveCategory_UnknownID(t *testing.T) {
	svc := service.NewInventoryService(newStubCategoryRepo(), nil)
	err := svc.RemoveCategory(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrCategoryNotFound)
}

func TestListCategories_OrderedByPrice(t *testing.T) {
	cats := newStubCategoryRepo()
	cats.add(200, 1)
	cats.add(99, 4)
	cats.add(149, 2)
	svc := service.NewInventoryService(cats, nil)

	list, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(99), list[0].Price)
	assert.Equal(t, int64(149), list[1].Price)
	assert.Equal(t, int64(200), list[2].Price)
}
