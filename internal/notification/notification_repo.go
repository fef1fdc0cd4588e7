package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindByEmployee(ctx context.Context, empID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, empID, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) FindByEmployee(ctx context.Context, empID string, limit int) ([]Notification, error) {
	var out []Notification
	err := r.db.WithContext(ctx).
		Where("emp_id = ?", empID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repository) MarkRead(ctx context.Context, empID, id string) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("emp_id = ?", empID).
		Where("id = ?", id).
		Update("read", true).Error
}
