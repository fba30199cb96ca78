package repository

import (
	"context"

	"github.com/mrinmay27/the149-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository is the data access contract for price categories.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling unit testing via in-memory fakes.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.PriceCategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceCategory, error)
	FindByPrice(ctx context.Context, price int64) (*model.PriceCategory, error)
	List(ctx context.Context) ([]model.PriceCategory, error)
	Update(ctx context.Context, c *model.PriceCategory) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PriceCategory, error)
	// DecrementStockTx applies `stock = stock - qty` guarded by `stock >= qty`.
	// Returns gorm.ErrRecordNotFound when the guard (or the id) does not match.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) error

	DB() *gorm.DB
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.PriceCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceCategory, error) {
	var c model.PriceCategory
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *categoryRepo) FindByPrice(ctx context.Context, price int64) (*model.PriceCategory, error) {
	var c model.PriceCategory
	err := r.db.WithContext(ctx).Where("price = ?", price).First(&c).Error
	return &c, err
}

// List returns all categories ordered by price ascending — the order the
// client renders tiers in.
func (r *categoryRepo) List(ctx context.Context) ([]model.PriceCategory, error) {
	var cats []model.PriceCategory
	err := r.db.WithContext(ctx).Order("price ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) Update(ctx context.Context, c *model.PriceCategory) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PriceCategory{}, "id = ?", id).Error
}

func (r *categoryRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PriceCategory, error) {
	var c model.PriceCategory
	err := tx.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *categoryRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	res := tx.Model(&model.PriceCategory{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepo) DB() *gorm.DB { return r.db }
