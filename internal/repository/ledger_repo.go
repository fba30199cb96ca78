package repository

import (
	"context"

	"github.com/mrinmay27/the149-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository guards the singleton balances row. Mutate is the ONLY write
// path: it locks the row FOR UPDATE inside the caller's transaction, runs the
// validate-and-apply closure against the locked snapshot, and persists the
// result only when the closure returns nil. Concurrent mutations therefore
// serialize on the row lock — the read-validate-write unit can never interleave.
type LedgerRepository interface {
	Get(ctx context.Context) (*model.AccountBalance, error)
	Mutate(ctx context.Context, tx *gorm.DB, fn func(b *model.AccountBalance) error) error

	// EnsureSingleton creates the balances row if it does not exist yet.
	EnsureSingleton(ctx context.Context) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) Get(ctx context.Context) (*model.AccountBalance, error) {
	var b model.AccountBalance
	err := r.db.WithContext(ctx).First(&b).Error
	return &b, err
}

func (r *ledgerRepo) Mutate(ctx context.Context, tx *gorm.DB, fn func(b *model.AccountBalance) error) error {
	var b model.AccountBalance
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&b).Error; err != nil {
		return err
	}
	if err := fn(&b); err != nil {
		return err
	}
	return tx.Save(&b).Error
}

func (r *ledgerRepo) EnsureSingleton(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AccountBalance{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&model.AccountBalance{}).Error
}

func (r *ledgerRepo) DB() *gorm.DB { return r.db }
