package approval_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"approval-portal/internal/application"
	applicationerrors "approval-portal/internal/application/errors"
	"approval-portal/internal/approval"
	approvalerrors "approval-portal/internal/approval/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeApprovalRepository struct {
	withTxFn                  func(tx *sql.Tx) approval.Repository
	createStagesFn            func(ctx context.Context, stages []approval.Stage) error
	findStagesByApplnNoFn     func(ctx context.Context, module, applnNo string) ([]approval.Stage, error)
	findStagesByApproverFn    func(ctx context.Context, module, approverID string) ([]approval.Stage, error)
	updateStageFn             func(ctx context.Context, s *approval.Stage) error
	findRoutesByDirectorateFn func(ctx context.Context, directorate string) ([]approval.Route, error)
	countActionableFn         func(ctx context.Context, module, approverID string) (int64, error)
}

func (f *fakeApprovalRepository) WithTx(tx *sql.Tx) approval.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeApprovalRepository) CreateStages(ctx context.Context, stages []approval.Stage) error {
	if f.createStagesFn != nil {
		return f.createStagesFn(ctx, stages)
	}
	return nil
}

func (f *fakeApprovalRepository) FindStagesByApplnNo(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
	if f.findStagesByApplnNoFn != nil {
		return f.findStagesByApplnNoFn(ctx, module, applnNo)
	}
	return nil, nil
}

func (f *fakeApprovalRepository) FindStagesByApprover(ctx context.Context, module, approverID string) ([]approval.Stage, error) {
	if f.findStagesByApproverFn != nil {
		return f.findStagesByApproverFn(ctx, module, approverID)
	}
	return nil, nil
}

func (f *fakeApprovalRepository) UpdateStage(ctx context.Context, s *approval.Stage) error {
	if f.updateStageFn != nil {
		return f.updateStageFn(ctx, s)
	}
	return nil
}

func (f *fakeApprovalRepository) FindRoutesByDirectorate(ctx context.Context, directorate string) ([]approval.Route, error) {
	if f.findRoutesByDirectorateFn != nil {
		return f.findRoutesByDirectorateFn(ctx, directorate)
	}
	return nil, nil
}

func (f *fakeApprovalRepository) CountActionable(ctx context.Context, module, approverID string) (int64, error) {
	if f.countActionableFn != nil {
		return f.countActionableFn(ctx, module, approverID)
	}
	return 0, nil
}

type fakeAppRepo struct {
	withTxFn         func(tx *sql.Tx) application.Repository
	findByApplnNoFn  func(ctx context.Context, module, applnNo string) (*application.Application, error)
	findByApplnNosFn func(ctx context.Context, module string, applnNos []string) ([]application.Application, error)
	updateFn         func(ctx context.Context, a *application.Application) error
}

func (f *fakeAppRepo) WithTx(tx *sql.Tx) application.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}
func (f *fakeAppRepo) Create(ctx context.Context, a *application.Application) error {
	return nil
}
func (f *fakeAppRepo) FindByApplnNo(ctx context.Context, module, applnNo string) (*application.Application, error) {
	if f.findByApplnNoFn != nil {
		return f.findByApplnNoFn(ctx, module, applnNo)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAppRepo) FindByApplnNos(ctx context.Context, module string, applnNos []string) ([]application.Application, error) {
	if f.findByApplnNosFn != nil {
		return f.findByApplnNosFn(ctx, module, applnNos)
	}
	return nil, nil
}
func (f *fakeAppRepo) FindAllByEmployee(ctx context.Context, module, empID string) ([]application.Application, error) {
	return nil, nil
}
func (f *fakeAppRepo) ListAll(ctx context.Context, module string) ([]application.Application, error) {
	return nil, nil
}
func (f *fakeAppRepo) Update(ctx context.Context, a *application.Application) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, a)
	}
	return nil
}
func (f *fakeAppRepo) CountPendingByEmployee(ctx context.Context, module, empID string) (int64, error) {
	return 0, nil
}
func (f *fakeAppRepo) HasOverlappingPeriod(ctx context.Context, module, empID string, startDate, endDate time.Time, excludeApplnNo string) (bool, error) {
	return false, nil
}

type approvalServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service approval.Service
	repo    *fakeApprovalRepository
	apps    *fakeAppRepo
}

func setupApprovalServiceTest(t *testing.T) *approvalServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeApprovalRepository{}
	apps := &fakeAppRepo{}
	svc := approval.NewService(db, repo, apps, nil)

	return &approvalServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		apps:    apps,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingApplication() *application.Application {
	return &application.Application{
		ApplnNo:     "DA-1733011200000",
		Module:      "da",
		EmpID:       "EMP001",
		Name:        "A. Sharma",
		Directorate: "Finance",
		Status:      application.StatusPending,
	}
}

func twoStageChain() []approval.Stage {
	return []approval.Stage{
		{
			ID:           uuid.New(),
			ApplnNo:      "DA-1733011200000",
			Module:       "da",
			Stage:        1,
			ApproverID:   "APPR1",
			ApproverName: "S. Rao",
			RoleNo:       11,
			RoleName:     "Section Officer",
		},
		{
			ID:           uuid.New(),
			ApplnNo:      "DA-1733011200000",
			Module:       "da",
			Stage:        2,
			ApproverID:   "APPR2",
			ApproverName: "K. Iyer",
			RoleNo:       21,
			RoleName:     "Director",
		},
	}
}

func TestApprovalService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("success stage one moves to in-approval", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return pendingApplication(), nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return twoStageChain(), nil
		}
		// Both writes must go through repositories bound to the decision
		// transaction, or a failed commit leaves a half-applied decision.
		deps.repo.withTxFn = func(tx *sql.Tx) approval.Repository {
			assert.NotNil(t, tx)
			return deps.repo
		}
		deps.apps.withTxFn = func(tx *sql.Tx) application.Repository {
			assert.NotNil(t, tx)
			return deps.apps
		}
		deps.repo.updateStageFn = func(ctx context.Context, s *approval.Stage) error {
			assert.Equal(t, 1, s.Stage)
			assert.NotNil(t, s.Action)
			assert.Equal(t, approval.ActionApproved, *s.Action)
			assert.NotNil(t, s.ActionDate)
			assert.Equal(t, "Verified", s.Remarks)
			return nil
		}
		var savedStatus string
		deps.apps.updateFn = func(ctx context.Context, a *application.Application) error {
			savedStatus = a.Status
			return nil
		}

		item, err := deps.service.Approve(ctx, application.DA, "DA-1733011200000", "APPR1", 11, "Verified")

		assert.NoError(t, err)
		assert.Equal(t, application.StatusInApproval, savedStatus)
		assert.Equal(t, application.StatusInApproval, item.Status)
		assert.True(t, item.ActedByMe)
		assert.False(t, item.CanAct)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success stage two finally approves", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		app := pendingApplication()
		app.Status = application.StatusInApproval
		chain := twoStageChain()
		actioned := approval.ActionApproved
		when := time.Now()
		chain[0].Action = &actioned
		chain[0].ActionDate = &when

		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return app, nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return chain, nil
		}

		item, err := deps.service.Approve(ctx, application.DA, app.ApplnNo, "APPR2", 21, "")

		assert.NoError(t, err)
		assert.Equal(t, application.StatusApproved, item.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative wrong role is not approval authority", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return pendingApplication(), nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return twoStageChain(), nil
		}

		_, err := deps.service.Approve(ctx, application.DA, "DA-1733011200000", "APPR1", 99, "")

		assert.ErrorIs(t, err, approvalerrors.ErrNotApprovalAuthority)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative stage two cannot act before stage one", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return pendingApplication(), nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return twoStageChain(), nil
		}

		_, err := deps.service.Approve(ctx, application.DA, "DA-1733011200000", "APPR2", 21, "")

		assert.ErrorIs(t, err, approvalerrors.ErrNotApprovalAuthority)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already actioned", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		app := pendingApplication()
		app.Status = application.StatusInApproval
		chain := twoStageChain()
		actioned := approval.ActionApproved
		chain[0].Action = &actioned

		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return app, nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return chain, nil
		}

		_, err := deps.service.Approve(ctx, application.DA, app.ApplnNo, "APPR1", 11, "")

		assert.ErrorIs(t, err, approvalerrors.ErrAlreadyActioned)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown application", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Approve(ctx, application.DA, "DA-404", "APPR1", 11, "")

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})

	t.Run("negative missing role number", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Approve(ctx, application.DA, "DA-1", "APPR1", 0, "")

		assert.ErrorIs(t, err, approvalerrors.ErrRoleNoRequired)
	})
}

func TestApprovalService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("success any stage rejection is terminal", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return pendingApplication(), nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return twoStageChain(), nil
		}
		var savedStatus string
		deps.apps.updateFn = func(ctx context.Context, a *application.Application) error {
			savedStatus = a.Status
			return nil
		}

		item, err := deps.service.Reject(ctx, application.DA, "DA-1733011200000", "APPR1", 11, "Incomplete bills")

		assert.NoError(t, err)
		assert.Equal(t, application.StatusRejected, savedStatus)
		assert.Equal(t, application.StatusRejected, item.Status)
		assert.Equal(t, approval.ActionRejected, *item.MyAction)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestApprovalService_PlanStages(t *testing.T) {
	ctx := context.Background()

	t.Run("success builds the chain from the directorate route", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		tx, err := deps.db.Begin()
		assert.NoError(t, err)

		deps.repo.findRoutesByDirectorateFn = func(ctx context.Context, directorate string) ([]approval.Route, error) {
			assert.Equal(t, "Finance", directorate)
			return []approval.Route{
				{Directorate: "Finance", Stage: 1, ApproverID: "APPR1", ApproverName: "S. Rao", RoleNo: 11, RoleName: "Section Officer"},
				{Directorate: "Finance", Stage: 2, ApproverID: "APPR2", ApproverName: "K. Iyer", RoleNo: 21, RoleName: "Director"},
			}, nil
		}
		var created []approval.Stage
		deps.repo.createStagesFn = func(ctx context.Context, stages []approval.Stage) error {
			created = stages
			return nil
		}

		err = deps.service.PlanStages(ctx, tx, pendingApplication())

		assert.NoError(t, err)
		assert.Len(t, created, 2)
		assert.Equal(t, 1, created[0].Stage)
		assert.Equal(t, "APPR1", created[0].ApproverID)
		assert.Equal(t, "DA-1733011200000", created[0].ApplnNo)
		assert.Equal(t, 2, created[1].Stage)
	})

	t.Run("negative no route configured", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		tx, err := deps.db.Begin()
		assert.NoError(t, err)

		deps.repo.findRoutesByDirectorateFn = func(ctx context.Context, directorate string) ([]approval.Route, error) {
			return nil, nil
		}

		err = deps.service.PlanStages(ctx, tx, pendingApplication())

		assert.ErrorIs(t, err, approvalerrors.ErrNoRouteForDirectorate)
	})
}

func TestApprovalService_PendingForMe(t *testing.T) {
	ctx := context.Background()

	t.Run("success joins stages with applications", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		chain := twoStageChain()
		deps.repo.findStagesByApproverFn = func(ctx context.Context, module, approverID string) ([]approval.Stage, error) {
			assert.Equal(t, "APPR1", approverID)
			return chain[:1], nil
		}
		deps.apps.findByApplnNosFn = func(ctx context.Context, module string, applnNos []string) ([]application.Application, error) {
			assert.Equal(t, []string{"DA-1733011200000"}, applnNos)
			return []application.Application{*pendingApplication()}, nil
		}

		items, err := deps.service.PendingForMe(ctx, application.DA, "APPR1")

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.True(t, items[0].CanAct)
		assert.False(t, items[0].ActedByMe)
		assert.Equal(t, application.StatusPending, items[0].Status)
	})

	t.Run("success empty worklist", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		items, err := deps.service.PendingForMe(ctx, application.DA, "APPR1")

		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("negative missing approver id", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.PendingForMe(ctx, application.DA, "")

		assert.ErrorIs(t, err, approvalerrors.ErrApproverIDRequired)
	})
}

func TestApprovalService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("success flattens both stages", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		app := pendingApplication()
		app.Status = application.StatusApproved
		chain := twoStageChain()
		approved := approval.ActionApproved
		when := time.Date(2026, 3, 5, 10, 30, 0, 0, time.Local)
		chain[0].Action = &approved
		chain[0].ActionDate = &when
		chain[0].Remarks = "Verified"
		chain[1].Action = &approved
		chain[1].ActionDate = &when

		deps.apps.findByApplnNoFn = func(ctx context.Context, module, applnNo string) (*application.Application, error) {
			return app, nil
		}
		deps.repo.findStagesByApplnNoFn = func(ctx context.Context, module, applnNo string) ([]approval.Stage, error) {
			return chain, nil
		}

		audit, err := deps.service.History(ctx, application.DA, app.ApplnNo)

		assert.NoError(t, err)
		assert.Equal(t, app.ApplnNo, audit.ApplnNo)
		assert.Equal(t, application.StatusApproved, audit.Status)
		assert.Equal(t, "S. Rao", audit.Rec1Name)
		assert.Equal(t, "Section Officer", audit.Rec1Role)
		assert.Equal(t, approval.ActionApproved, audit.Rec1Action)
		assert.Equal(t, "2026-03-05 10:30", audit.Rec1ActionDate)
		assert.Equal(t, "Verified", audit.Rec1Remarks)
		assert.Equal(t, "K. Iyer", audit.Rec2Name)
	})

	t.Run("negative unknown application", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.History(ctx, application.DA, "DA-404")

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})
}

func TestApprovalService_CountActionableForMe(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.repo.countActionableFn = func(ctx context.Context, module, approverID string) (int64, error) {
			return 4, nil
		}

		count, err := deps.service.CountActionableForMe(ctx, application.DA, "APPR1")

		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("negative missing approver id", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.CountActionableForMe(ctx, application.DA, "")

		assert.ErrorIs(t, err, approvalerrors.ErrApproverIDRequired)
	})
}
