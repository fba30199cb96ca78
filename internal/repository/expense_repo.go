package repository

import (
	"context"

	"github.com/mrinmay27/the149-store/internal/model"

	"gorm.io/gorm"
)

type ExpenseRepository interface {
	CreateTx(tx *gorm.DB, e *model.Expense) error
	ListRecent(ctx context.Context, limit int) ([]model.Expense, error)
	ListBetween(ctx context.Context, from, to int64) ([]model.Expense, error)
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) CreateTx(tx *gorm.DB, e *model.Expense) error {
	return tx.Create(e).Error
}

func (r *expenseRepo) ListRecent(ctx context.Context, limit int) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC").Limit(limit).
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) ListBetween(ctx context.Context, from, to int64) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Where("created_at >= to_timestamp(?) AND created_at < to_timestamp(?)", from, to).
		Order("created_at ASC").
		Find(&expenses).Error
	return expenses, err
}
