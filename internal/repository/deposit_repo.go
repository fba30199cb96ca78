package repository

import (
	"context"

	"github.com/mrinmay27/the149-store/internal/model"

	"gorm.io/gorm"
)

type DepositRepository interface {
	CreateTx(tx *gorm.DB, d *model.Deposit) error
	ListRecent(ctx context.Context, limit int) ([]model.Deposit, error)
	ListBetween(ctx context.Context, from, to int64) ([]model.Deposit, error)
}

type depositRepo struct{ db *gorm.DB }

func NewDepositRepository(db *gorm.DB) DepositRepository { return &depositRepo{db: db} }

func (r *depositRepo) CreateTx(tx *gorm.DB, d *model.Deposit) error {
	return tx.Create(d).Error
}

func (r *depositRepo) ListRecent(ctx context.Context, limit int) ([]model.Deposit, error) {
	var deposits []model.Deposit
	err := r.db.WithContext(ctx).
		Preload("Depositor").Preload("Receiver").
		Order("created_at DESC").Limit(limit).
		Find(&deposits).Error
	return deposits, err
}

func (r *depositRepo) ListBetween(ctx context.Context, from, to int64) ([]model.Deposit, error) {
	var deposits []model.Deposit
	err := r.db.WithContext(ctx).
		Where("created_at >= to_timestamp(?) AND created_at < to_timestamp(?)", from, to).
		Order("created_at ASC").
		Find(&deposits).Error
	return deposits, err
}
