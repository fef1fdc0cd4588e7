package application

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Application) error
	FindByApplnNo(ctx context.Context, module, applnNo string) (*Application, error)
	FindByApplnNos(ctx context.Context, module string, applnNos []string) ([]Application, error)
	FindAllByEmployee(ctx context.Context, module, empID string) ([]Application, error)
	ListAll(ctx context.Context, module string) ([]Application, error)
	Update(ctx context.Context, a *Application) error
	CountPendingByEmployee(ctx context.Context, module, empID string) (int64, error)
	HasOverlappingPeriod(ctx context.Context, module, empID string, startDate, endDate time.Time, excludeApplnNo string) (bool, error)
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
// when one is bound, the pool otherwise. Rolling back the transaction
// must undo every statement issued through the bound repository.
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

func (r *repository) Create(ctx context.Context, a *Application) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) FindByApplnNo(ctx context.Context, module, applnNo string) (*Application, error) {
	var a Application
	err := r.conn(ctx).
		Where("module = ?", module).
		First(&a, "appln_no = ?", applnNo).Error
	return &a, err
}

func (r *repository) FindByApplnNos(ctx context.Context, module string, applnNos []string) ([]Application, error) {
	if len(applnNos) == 0 {
		return nil, nil
	}
	var apps []Application
	err := r.conn(ctx).
		Where("module = ?", module).
		Where("appln_no IN ?", applnNos).
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, module, empID string) ([]Application, error) {
	var apps []Application
	err := r.conn(ctx).
		Where("module = ?", module).
		Where("emp_id = ?", empID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) ListAll(ctx context.Context, module string) ([]Application, error) {
	var apps []Application
	err := r.conn(ctx).
		Where("module = ?", module).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) Update(ctx context.Context, a *Application) error {
	return r.conn(ctx).Save(a).Error
}

func (r *repository) CountPendingByEmployee(ctx context.Context, module, empID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Application{}).
		Where("module = ?", module).
		Where("emp_id = ?", empID).
		Where("status IN ?", []string{StatusPending, StatusInApproval}).
		Count(&count).Error
	return count, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, module, empID string, startDate, endDate time.Time, excludeApplnNo string) (bool, error) {
	db := r.conn(ctx).
		Model(&Application{}).
		Where("module = ?", module).
		Where("emp_id = ?", empID).
		Where("status <> ?", StatusRejected).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeApplnNo != "" {
		db = db.Where("appln_no <> ?", excludeApplnNo)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, which the service maps onto a duplicate-number conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
