package approval

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateStages(ctx context.Context, stages []Stage) error
	FindStagesByApplnNo(ctx context.Context, module, applnNo string) ([]Stage, error)
	FindStagesByApprover(ctx context.Context, module, approverID string) ([]Stage, error)
	UpdateStage(ctx context.Context, s *Stage) error
	FindRoutesByDirectorate(ctx context.Context, directorate string) ([]Route, error)
	CountActionable(ctx context.Context, module, approverID string) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn returns the gorm handle queries run on: the caller's transaction
// when one is bound, the pool otherwise.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx == nil {
		return r.db.WithContext(ctx)
	}
	db := r.db.Session(&gorm.Session{
		Context:                  ctx,
		NewDB:                    true,
		SkipDefaultTransaction:   true,
		DisableNestedTransaction: true,
	})
	db.Statement.ConnPool = r.tx
	return db
}

// CreateStages runs on the caller's transaction when one is bound, so the
// chain appears atomically with the status flip that triggered it.
func (r *repository) CreateStages(ctx context.Context, stages []Stage) error {
	return r.conn(ctx).Create(&stages).Error
}

func (r *repository) FindStagesByApplnNo(ctx context.Context, module, applnNo string) ([]Stage, error) {
	var stages []Stage
	err := r.conn(ctx).
		Where("module = ?", module).
		Where("appln_no = ?", applnNo).
		Order("stage ASC").
		Find(&stages).Error
	return stages, err
}

func (r *repository) FindStagesByApprover(ctx context.Context, module, approverID string) ([]Stage, error) {
	var stages []Stage
	err := r.conn(ctx).
		Where("module = ?", module).
		Where("approver_id = ?", approverID).
		Order("created_at DESC").
		Find(&stages).Error
	return stages, err
}

func (r *repository) UpdateStage(ctx context.Context, s *Stage) error {
	return r.conn(ctx).Save(s).Error
}

func (r *repository) FindRoutesByDirectorate(ctx context.Context, directorate string) ([]Route, error) {
	var routes []Route
	err := r.conn(ctx).
		Where("directorate = ?", directorate).
		Order("stage ASC").
		Find(&routes).Error
	return routes, err
}

// CountActionable counts chains where this approver's stage is the one
// currently awaiting action: stage 1 against PENDING applications, stage 2
// against IN_APPROVAL ones.
func (r *repository) CountActionable(ctx context.Context, module, approverID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("approval_stages AS s").
		Joins("JOIN applications AS a ON a.appln_no = s.appln_no AND a.module = s.module").
		Where("s.module = ?", module).
		Where("s.approver_id = ?", approverID).
		Where("s.action IS NULL").
		Where("a.deleted_at IS NULL").
		Where(`(s.stage = 1 AND a.status = 'PENDING') OR (s.stage = 2 AND a.status = 'IN_APPROVAL')`).
		Count(&count).Error
	return count, err
}
