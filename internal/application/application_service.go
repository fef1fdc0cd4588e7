package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	apperrors "approval-portal/internal/application/errors"
	"approval-portal/internal/events"
	"approval-portal/internal/messaging/kafka"
	"approval-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	countPendingKeyPrefix = "application:count:pending:"
	countPendingTTL       = 30 * time.Second
)

// CountPendingKey is the Redis key caching an employee's pending count
// for one module.
func CountPendingKey(module, empID string) string {
	return countPendingKeyPrefix + module + ":" + empID
}

// StagePlanner seeds the approval chain for an application the moment it
// is sent for approval, inside the same transaction that flips its status.
type StagePlanner interface {
	PlanStages(ctx context.Context, tx *sql.Tx, app *Application) error
}

type Service interface {
	Submit(ctx context.Context, spec ModuleSpec, in SubmitInput) (ApplicationResponse, error)
	Update(ctx context.Context, spec ModuleSpec, applnNo string, in SubmitInput) (ApplicationResponse, error)
	FinalSubmit(ctx context.Context, spec ModuleSpec, applnNo, empID string) (ApplicationResponse, error)
	GetByApplnNo(ctx context.Context, spec ModuleSpec, applnNo string) (ApplicationResponse, error)
	ListByEmployee(ctx context.Context, spec ModuleSpec, empID string) ([]ApplicationResponse, error)
	ListAll(ctx context.Context, spec ModuleSpec) ([]ApplicationResponse, error)
	CountPending(ctx context.Context, spec ModuleSpec, empID string) (int64, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	files   FileStore
	planner StagePlanner
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, repo Repository, files FileStore, planner StagePlanner, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, files, planner, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	files FileStore,
	planner StagePlanner,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("application.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("application.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		files:   files,
		planner: planner,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
		now:     time.Now,
	}
}

func (s *service) Submit(ctx context.Context, spec ModuleSpec, in SubmitInput) (ApplicationResponse, error) {
	s.logger.Debug("submit requested",
		zap.String("module", spec.Code),
		zap.String("emp_id", in.EmpID),
		zap.String("appln_no", in.ApplnNo),
	)

	if in.EmpID == "" {
		return ApplicationResponse{}, apperrors.ErrEmpIDRequired
	}
	if errs := Validate(spec, in.fieldMap(spec), in.attachmentCount()); len(errs) > 0 {
		s.logger.Warn("submit validation failed",
			zap.String("module", spec.Code),
			zap.Int("field_errors", len(errs)),
		)
		return ApplicationResponse{}, &ValidationError{Fields: errs}
	}

	startDate, err := ParseDate(in.StartDate)
	if err != nil {
		return ApplicationResponse{}, err
	}
	endDate, err := ParseDate(in.EndDate)
	if err != nil {
		return ApplicationResponse{}, err
	}

	applnNo := in.ApplnNo
	if applnNo == "" {
		applnNo = spec.NewApplnNo(s.now())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, spec.Code, in.EmpID, startDate, endDate, "")
	if err != nil {
		s.logger.Error("submit overlap check failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if overlap {
		s.logger.Warn("submit overlap detected",
			zap.String("module", spec.Code),
			zap.String("emp_id", in.EmpID),
			zap.String("start_date", in.StartDate),
			zap.String("end_date", in.EndDate),
		)
		return ApplicationResponse{}, apperrors.ErrDuplicatePeriod
	}

	stored, err := s.storeUploads(ctx, spec.Code, in.EmpID, in.NewFiles)
	if err != nil {
		return ApplicationResponse{}, err
	}

	app := &Application{
		ID:          uuid.New(),
		ApplnNo:     applnNo,
		Module:      spec.Code,
		EmpID:       in.EmpID,
		Name:        in.Name,
		Directorate: in.Directorate,
		Division:    in.Division,
		Contact:     NormalizeContact(in.Contact),
		Reason:      in.Reason,
		StartDate:   startDate,
		EndDate:     endDate,
		Extras:      extrasFromStrings(in.Extras),
		FileName:    JoinFileNames(append(in.RetainedFiles, stored...)),
		Status:      StatusDraft,
	}

	if err := qtx.Create(ctx, app); err != nil {
		if IsUniqueViolation(err) {
			s.logger.Warn("submit duplicate appln_no", zap.String("appln_no", applnNo))
			return ApplicationResponse{}, apperrors.ErrDuplicateApplnNo
		}
		s.logger.Error("submit persist failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	s.logger.Info("submit success",
		zap.String("module", spec.Code),
		zap.String("appln_no", app.ApplnNo),
		zap.String("emp_id", app.EmpID),
	)
	return ToResponse(app), nil
}

func (s *service) Update(ctx context.Context, spec ModuleSpec, applnNo string, in SubmitInput) (ApplicationResponse, error) {
	s.logger.Debug("update requested",
		zap.String("module", spec.Code),
		zap.String("appln_no", applnNo),
	)

	if applnNo == "" {
		return ApplicationResponse{}, apperrors.ErrApplnNoRequired
	}
	if errs := Validate(spec, in.fieldMap(spec), in.attachmentCount()); len(errs) > 0 {
		s.logger.Warn("update validation failed",
			zap.String("appln_no", applnNo),
			zap.Int("field_errors", len(errs)),
		)
		return ApplicationResponse{}, &ValidationError{Fields: errs}
	}

	startDate, err := ParseDate(in.StartDate)
	if err != nil {
		return ApplicationResponse{}, err
	}
	endDate, err := ParseDate(in.EndDate)
	if err != nil {
		return ApplicationResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	app, err := qtx.FindByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, apperrors.ErrApplicationNotFound
		}
		s.logger.Error("update lookup failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if in.EmpID != "" && app.EmpID != in.EmpID {
		s.logger.Warn("update ownership mismatch",
			zap.String("appln_no", applnNo),
			zap.String("emp_id", in.EmpID),
		)
		return ApplicationResponse{}, apperrors.ErrApplicationNotFound
	}
	if !spec.Editable(app.Status) {
		s.logger.Warn("update rejected in current status",
			zap.String("appln_no", applnNo),
			zap.String("status", app.Status),
		)
		return ApplicationResponse{}, apperrors.ErrNotEditable
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, spec.Code, app.EmpID, startDate, endDate, applnNo)
	if err != nil {
		s.logger.Error("update overlap check failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if overlap {
		return ApplicationResponse{}, apperrors.ErrDuplicatePeriod
	}

	// Files the employee deselected are collected now but removed from
	// disk only after the commit; until then the stored manifest still
	// points at them, and a failed persist must not orphan it.
	retained := make(map[string]bool, len(in.RetainedFiles))
	for _, f := range in.RetainedFiles {
		retained[f] = true
	}
	var dropped []string
	for _, existing := range SplitFileNames(app.FileName) {
		if !retained[existing] {
			dropped = append(dropped, existing)
		}
	}
	stored, err := s.storeUploads(ctx, spec.Code, app.EmpID, in.NewFiles)
	if err != nil {
		return ApplicationResponse{}, err
	}

	app.Name = in.Name
	app.Directorate = in.Directorate
	app.Division = in.Division
	app.Contact = NormalizeContact(in.Contact)
	app.Reason = in.Reason
	app.StartDate = startDate
	app.EndDate = endDate
	app.Extras = extrasFromStrings(in.Extras)
	app.FileName = JoinFileNames(append(in.RetainedFiles, stored...))

	if err := qtx.Update(ctx, app); err != nil {
		s.logger.Error("update persist failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	for _, name := range dropped {
		if err := s.files.Remove(ctx, spec.Code, app.EmpID, name); err != nil {
			s.logger.Warn("remove dropped attachment failed",
				zap.String("stored_name", name),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("update success",
		zap.String("module", spec.Code),
		zap.String("appln_no", app.ApplnNo),
	)
	return ToResponse(app), nil
}

func (s *service) FinalSubmit(ctx context.Context, spec ModuleSpec, applnNo, empID string) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("final submit requested",
		zap.String("request_id", rid),
		zap.String("module", spec.Code),
		zap.String("appln_no", applnNo),
	)

	if applnNo == "" {
		return ApplicationResponse{}, apperrors.ErrApplnNoRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("final submit begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	app, err := qtx.FindByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, apperrors.ErrApplicationNotFound
		}
		s.logger.Error("final submit lookup failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if empID != "" && app.EmpID != empID {
		return ApplicationResponse{}, apperrors.ErrApplicationNotFound
	}
	if app.Status != StatusDraft {
		s.logger.Warn("final submit on non-draft",
			zap.String("appln_no", applnNo),
			zap.String("status", app.Status),
		)
		return ApplicationResponse{}, apperrors.ErrNotDraft
	}
	if spec.AttachmentsRequired && app.FileName == "" {
		return ApplicationResponse{}, &ValidationError{Fields: ErrorMap{
			"files": "Supporting document is required",
		}}
	}

	app.Status = StatusPending
	if err := qtx.Update(ctx, app); err != nil {
		s.logger.Error("final submit persist failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	if s.planner != nil {
		if err := s.planner.PlanStages(ctx, tx, app); err != nil {
			s.logger.Error("final submit stage planning failed",
				zap.String("appln_no", applnNo),
				zap.Error(err),
			)
			return ApplicationResponse{}, err
		}
	}

	if s.outbox != nil {
		event := events.ApplicationStatusChangedEvent{
			EventType:  events.TypeApplicationSubmitted,
			RequestID:  rid,
			Module:     spec.Code,
			ApplnNo:    app.ApplnNo,
			EmpID:      app.EmpID,
			Status:     app.Status,
			OccurredAt: s.now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return ApplicationResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:        uuid.NewString(),
			RequestID: rid,
			Module:    spec.Code,
			ApplnNo:   app.ApplnNo,
			EventType: event.EventType,
			Topic:     events.ApplicationLifecycleTopic,
			Payload:   payload,
			Status:    kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("final submit outbox persist failed",
				zap.String("appln_no", app.ApplnNo),
				zap.Error(err),
			)
			return ApplicationResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("final submit commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	s.invalidatePendingCount(ctx, spec.Code, app.EmpID)

	s.logger.Info("final submit success",
		zap.String("request_id", rid),
		zap.String("module", spec.Code),
		zap.String("appln_no", app.ApplnNo),
	)
	return ToResponse(app), nil
}

func (s *service) GetByApplnNo(ctx context.Context, spec ModuleSpec, applnNo string) (ApplicationResponse, error) {
	if applnNo == "" {
		return ApplicationResponse{}, apperrors.ErrApplnNoRequired
	}
	app, err := s.repo.FindByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, apperrors.ErrApplicationNotFound
		}
		s.logger.Error("get by appln_no failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	return ToResponse(app), nil
}

func (s *service) ListByEmployee(ctx context.Context, spec ModuleSpec, empID string) ([]ApplicationResponse, error) {
	if empID == "" {
		return nil, apperrors.ErrEmpIDRequired
	}
	apps, err := s.repo.FindAllByEmployee(ctx, spec.Code, empID)
	if err != nil {
		s.logger.Error("list by employee failed", zap.Error(err))
		return nil, err
	}
	return ToResponseList(apps), nil
}

func (s *service) ListAll(ctx context.Context, spec ModuleSpec) ([]ApplicationResponse, error) {
	apps, err := s.repo.ListAll(ctx, spec.Code)
	if err != nil {
		s.logger.Error("list all failed", zap.Error(err))
		return nil, err
	}
	return ToResponseList(apps), nil
}

func (s *service) CountPending(ctx context.Context, spec ModuleSpec, empID string) (int64, error) {
	if empID == "" {
		return 0, apperrors.ErrEmpIDRequired
	}
	cacheKey := CountPendingKey(spec.Code, empID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return n, nil
			}
		}
	}

	// Sidebar badges poll this on a timer; singleflight collapses the
	// stampede after the cache entry expires.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		count, err := s.repo.CountPendingByEmployee(ctx, spec.Code, empID)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			s.rdb.Set(ctx, cacheKey, strconv.FormatInt(count, 10), countPendingTTL)
		}
		return count, nil
	})
	if err != nil {
		s.logger.Error("count pending failed", zap.Error(err))
		return 0, err
	}
	return v.(int64), nil
}

func (s *service) storeUploads(ctx context.Context, module, empID string, uploads []Upload) ([]string, error) {
	stored := make([]string, 0, len(uploads))
	for _, up := range uploads {
		name, err := s.files.Save(ctx, module, empID, up)
		if err != nil {
			s.logger.Error("store attachment failed",
				zap.String("file_name", up.FileName),
				zap.Error(err),
			)
			return nil, err
		}
		stored = append(stored, name)
	}
	return stored, nil
}

func (s *service) invalidatePendingCount(ctx context.Context, module, empID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := CountPendingKey(module, empID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate pending count cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}
