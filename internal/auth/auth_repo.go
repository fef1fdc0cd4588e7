package auth

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	GetByEmpID(ctx context.Context, empID string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEmpID(ctx context.Context, empID string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&u, "emp_id = ?", empID).Error
	return &u, err
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}
