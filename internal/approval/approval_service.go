package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"approval-portal/internal/application"
	applicationerrors "approval-portal/internal/application/errors"
	approvalerrors "approval-portal/internal/approval/errors"
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
	countActionableKeyPrefix = "approval:count:pending:"
	countActionableTTL       = 30 * time.Second
)

// CountActionableKey is the Redis key caching an approver's actionable
// count for one module.
func CountActionableKey(module, approverID string) string {
	return countActionableKeyPrefix + module + ":" + approverID
}

type Service interface {
	PendingForMe(ctx context.Context, spec application.ModuleSpec, approverID string) ([]PendingItem, error)
	Approve(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) (PendingItem, error)
	Reject(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) (PendingItem, error)
	History(ctx context.Context, spec application.ModuleSpec, applnNo string) (AuditResponse, error)
	CountActionableForMe(ctx context.Context, spec application.ModuleSpec, approverID string) (int64, error)
	PlanStages(ctx context.Context, tx *sql.Tx, app *application.Application) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	apps   application.Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, repo Repository, apps application.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, apps, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	apps application.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		apps:   apps,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
		now:    time.Now,
	}
}

// PlanStages seeds the two-step chain from the directorate's configured
// route. It runs inside the transaction that flips the application to
// PENDING, so a routing failure aborts the send entirely.
func (s *service) PlanStages(ctx context.Context, tx *sql.Tx, app *application.Application) error {
	routes, err := s.repo.FindRoutesByDirectorate(ctx, app.Directorate)
	if err != nil {
		s.logger.Error("load approval routes failed",
			zap.String("directorate", app.Directorate),
			zap.Error(err),
		)
		return err
	}
	if len(routes) == 0 {
		s.logger.Warn("no approval route for directorate",
			zap.String("appln_no", app.ApplnNo),
			zap.String("directorate", app.Directorate),
		)
		return approvalerrors.ErrNoRouteForDirectorate
	}

	stages := make([]Stage, 0, len(routes))
	for _, route := range routes {
		stages = append(stages, Stage{
			ID:           uuid.New(),
			ApplnNo:      app.ApplnNo,
			Module:       app.Module,
			Stage:        route.Stage,
			ApproverID:   route.ApproverID,
			ApproverName: route.ApproverName,
			RoleNo:       route.RoleNo,
			RoleName:     route.RoleName,
		})
	}

	if err := s.repo.WithTx(tx).CreateStages(ctx, stages); err != nil {
		s.logger.Error("create approval stages failed",
			zap.String("appln_no", app.ApplnNo),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("approval chain planned",
		zap.String("appln_no", app.ApplnNo),
		zap.String("directorate", app.Directorate),
		zap.Int("stages", len(stages)),
	)
	return nil
}

func (s *service) PendingForMe(ctx context.Context, spec application.ModuleSpec, approverID string) ([]PendingItem, error) {
	if approverID == "" {
		return nil, approvalerrors.ErrApproverIDRequired
	}

	stages, err := s.repo.FindStagesByApprover(ctx, spec.Code, approverID)
	if err != nil {
		s.logger.Error("load approver stages failed", zap.Error(err))
		return nil, err
	}
	if len(stages) == 0 {
		return []PendingItem{}, nil
	}

	applnNos := make([]string, 0, len(stages))
	stageByApplnNo := make(map[string]Stage, len(stages))
	for _, st := range stages {
		if _, seen := stageByApplnNo[st.ApplnNo]; !seen {
			applnNos = append(applnNos, st.ApplnNo)
		}
		stageByApplnNo[st.ApplnNo] = st
	}

	apps, err := s.apps.FindByApplnNos(ctx, spec.Code, applnNos)
	if err != nil {
		s.logger.Error("load applications for worklist failed", zap.Error(err))
		return nil, err
	}

	items := make([]PendingItem, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		st, ok := stageByApplnNo[app.ApplnNo]
		if !ok {
			continue
		}
		items = append(items, PendingItem{
			Application: application.ToResponse(app),
			Status:      app.Status,
			CanAct:      stageActionable(st, app.Status),
			ActedByMe:   st.Action != nil,
			MyAction:    st.Action,
		})
	}
	return items, nil
}

func (s *service) Approve(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) (PendingItem, error) {
	return s.decide(ctx, spec, applnNo, approverID, roleNo, ActionApproved, remarks)
}

func (s *service) Reject(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, remarks string) (PendingItem, error) {
	return s.decide(ctx, spec, applnNo, approverID, roleNo, ActionRejected, remarks)
}

func (s *service) decide(ctx context.Context, spec application.ModuleSpec, applnNo, approverID string, roleNo int, action, remarks string) (PendingItem, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approval decision requested",
		zap.String("request_id", rid),
		zap.String("module", spec.Code),
		zap.String("appln_no", applnNo),
		zap.String("approver_id", approverID),
		zap.Int("role_no", roleNo),
		zap.String("action", action),
	)

	if approverID == "" {
		return PendingItem{}, approvalerrors.ErrApproverIDRequired
	}
	if roleNo == 0 {
		return PendingItem{}, approvalerrors.ErrRoleNoRequired
	}

	app, err := s.apps.FindByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PendingItem{}, applicationerrors.ErrApplicationNotFound
		}
		s.logger.Error("decision lookup failed", zap.Error(err))
		return PendingItem{}, err
	}

	stages, err := s.repo.FindStagesByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		s.logger.Error("load stages failed", zap.Error(err))
		return PendingItem{}, err
	}
	if len(stages) == 0 {
		return PendingItem{}, approvalerrors.ErrStageNotFound
	}

	var mine *Stage
	for i := range stages {
		if stages[i].ApproverID == approverID && stages[i].RoleNo == roleNo {
			mine = &stages[i]
			break
		}
	}
	if mine == nil {
		s.logger.Warn("approver not in chain",
			zap.String("appln_no", applnNo),
			zap.String("approver_id", approverID),
			zap.Int("role_no", roleNo),
		)
		return PendingItem{}, approvalerrors.ErrNotApprovalAuthority
	}
	if mine.Action != nil {
		return PendingItem{}, approvalerrors.ErrAlreadyActioned
	}
	if !stageActionable(*mine, app.Status) {
		s.logger.Warn("decision out of turn",
			zap.String("appln_no", applnNo),
			zap.Int("stage", mine.Stage),
			zap.String("status", app.Status),
		)
		return PendingItem{}, approvalerrors.ErrNotApprovalAuthority
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decision begin tx failed", zap.Error(err))
		return PendingItem{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qapps := s.apps.WithTx(tx)

	actionDate := s.now()
	mine.Action = &action
	mine.ActionDate = &actionDate
	mine.Remarks = remarks
	if err := qtx.UpdateStage(ctx, mine); err != nil {
		s.logger.Error("persist stage decision failed", zap.Error(err))
		return PendingItem{}, err
	}

	app.Status = nextStatus(mine.Stage, action)
	if err := qapps.Update(ctx, app); err != nil {
		s.logger.Error("persist application status failed", zap.Error(err))
		return PendingItem{}, err
	}

	if s.outbox != nil && terminalStatus(app.Status) {
		eventType := events.TypeApplicationApproved
		if app.Status == application.StatusRejected {
			eventType = events.TypeApplicationRejected
		}
		event := events.ApplicationStatusChangedEvent{
			EventType:  eventType,
			RequestID:  rid,
			Module:     spec.Code,
			ApplnNo:    app.ApplnNo,
			EmpID:      app.EmpID,
			Status:     app.Status,
			ActorName:  mine.ApproverName,
			Remarks:    remarks,
			OccurredAt: actionDate.UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return PendingItem{}, err
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
			s.logger.Error("decision outbox persist failed",
				zap.String("appln_no", app.ApplnNo),
				zap.Error(err),
			)
			return PendingItem{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decision commit failed", zap.Error(err))
		return PendingItem{}, err
	}

	s.invalidateCounts(ctx, spec.Code, app.EmpID, stages)

	s.logger.Info("approval decision recorded",
		zap.String("request_id", rid),
		zap.String("appln_no", app.ApplnNo),
		zap.Int("stage", mine.Stage),
		zap.String("action", action),
		zap.String("new_status", app.Status),
	)

	return PendingItem{
		Application: application.ToResponse(app),
		Status:      app.Status,
		CanAct:      false,
		ActedByMe:   true,
		MyAction:    &action,
	}, nil
}

func (s *service) History(ctx context.Context, spec application.ModuleSpec, applnNo string) (AuditResponse, error) {
	app, err := s.apps.FindByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuditResponse{}, applicationerrors.ErrApplicationNotFound
		}
		s.logger.Error("history lookup failed", zap.Error(err))
		return AuditResponse{}, err
	}

	stages, err := s.repo.FindStagesByApplnNo(ctx, spec.Code, applnNo)
	if err != nil {
		s.logger.Error("history stages failed", zap.Error(err))
		return AuditResponse{}, err
	}

	resp := AuditResponse{
		ApplnNo: app.ApplnNo,
		Module:  app.Module,
		Status:  app.Status,
	}
	for _, st := range stages {
		fillAuditStage(&resp, st)
	}
	return resp, nil
}

func (s *service) CountActionableForMe(ctx context.Context, spec application.ModuleSpec, approverID string) (int64, error) {
	if approverID == "" {
		return 0, approvalerrors.ErrApproverIDRequired
	}
	cacheKey := CountActionableKey(spec.Code, approverID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return n, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		count, err := s.repo.CountActionable(ctx, spec.Code, approverID)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			s.rdb.Set(ctx, cacheKey, strconv.FormatInt(count, 10), countActionableTTL)
		}
		return count, nil
	})
	if err != nil {
		s.logger.Error("count actionable failed", zap.Error(err))
		return 0, err
	}
	return v.(int64), nil
}

// stageActionable reports whether a stage is the one the workflow is
// waiting on: stage 1 acts on PENDING, stage 2 on IN_APPROVAL.
func stageActionable(st Stage, status string) bool {
	if st.Action != nil {
		return false
	}
	switch st.Stage {
	case 1:
		return status == application.StatusPending
	case 2:
		return status == application.StatusInApproval
	default:
		return false
	}
}

func nextStatus(stage int, action string) string {
	if action == ActionRejected {
		return application.StatusRejected
	}
	if stage == 1 {
		return application.StatusInApproval
	}
	return application.StatusApproved
}

func terminalStatus(status string) bool {
	return status == application.StatusApproved || status == application.StatusRejected
}

func (s *service) invalidateCounts(ctx context.Context, module, empID string, stages []Stage) {
	if s.rdb == nil {
		return
	}
	keys := []string{application.CountPendingKey(module, empID)}
	for _, st := range stages {
		keys = append(keys, CountActionableKey(module, st.ApproverID))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("failed to invalidate approval count caches",
			zap.Error(err),
			zap.Strings("keys", keys),
		)
	}
}
