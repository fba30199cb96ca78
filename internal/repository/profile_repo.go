package repository

import (
	"context"

	"github.com/mrinmay27/the149-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindByPhone(ctx context.Context, phone string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	ListApproved(ctx context.Context) ([]model.Profile, error)
	ListApprovedByRole(ctx context.Context, role string) ([]model.Profile, error)
	ListAdmins(ctx context.Context) ([]model.Profile, error)
	Update(ctx context.Context, p *model.Profile) error
}

type profileRepo struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepo{db: db} }

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *profileRepo) FindByPhone(ctx context.Context, phone string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&p).Error
	return &p, err
}

func (r *profileRepo) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) ListApproved(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Where("approved = true").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) ListApprovedByRole(ctx context.Context, role string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Where("approved = true AND role = ?", role).Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) ListAdmins(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Where("is_admin = true").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) Update(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
