package repository

import (
	"context"

	"github.com/mrinmay27/the149-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleRepository is append-only: sales are never updated or deleted.
type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// ListRecent returns the newest `limit` sales with items and creator preloaded.
	ListRecent(ctx context.Context, limit int) ([]model.Sale, error)
	ListBetween(ctx context.Context, from, to int64) ([]model.Sale, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Preload("Creator").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) ListRecent(ctx context.Context, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Creator").
		Order("created_at DESC").Limit(limit).
		Find(&sales).Error
	return sales, err
}

// ListBetween filters by unix timestamps, inclusive of from, exclusive of to.
func (r *saleRepo) ListBetween(ctx context.Context, from, to int64) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= to_timestamp(?) AND created_at < to_timestamp(?)", from, to).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) DB() *gorm.DB { return r.db }
