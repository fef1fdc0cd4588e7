package notification

import (
	"context"
	"fmt"
	"strings"

	"approval-portal/internal/application"
	applicationerrors "approval-portal/internal/application/errors"
	"approval-portal/internal/events"

	"go.uber.org/zap"
)

type NotificationResponse struct {
	ID        string `json:"id"`
	Module    string `json:"module"`
	ApplnNo   string `json:"applnNo"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

type Service interface {
	RecordStatusChange(ctx context.Context, event events.ApplicationStatusChangedEvent) error
	ListByEmployee(ctx context.Context, empID string) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, empID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) RecordStatusChange(ctx context.Context, event events.ApplicationStatusChangedEvent) error {
	if _, ok := application.ModuleByCode(event.Module); !ok {
		s.logger.Warn("status change event for unknown module",
			zap.String("module", event.Module),
			zap.String("appln_no", event.ApplnNo),
		)
		return applicationerrors.ErrUnknownModule
	}
	n := &Notification{
		EmpID:   event.EmpID,
		Module:  event.Module,
		ApplnNo: event.ApplnNo,
		Message: messageFor(event),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("record status change failed",
			zap.String("appln_no", event.ApplnNo),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("notification recorded",
		zap.String("emp_id", event.EmpID),
		zap.String("appln_no", event.ApplnNo),
		zap.String("event_type", event.EventType),
	)
	return nil
}

func (s *service) ListByEmployee(ctx context.Context, empID string) ([]NotificationResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, empID, 50)
	if err != nil {
		s.logger.Error("list notifications failed", zap.Error(err))
		return nil, err
	}
	out := make([]NotificationResponse, 0, len(rows))
	for _, n := range rows {
		out = append(out, NotificationResponse{
			ID:        n.ID.String(),
			Module:    n.Module,
			ApplnNo:   n.ApplnNo,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, empID, id string) error {
	return s.repo.MarkRead(ctx, empID, id)
}

func messageFor(event events.ApplicationStatusChangedEvent) string {
	module := strings.ToUpper(event.Module)
	switch event.EventType {
	case events.TypeApplicationApproved:
		return fmt.Sprintf("Your %s application %s has been approved", module, event.ApplnNo)
	case events.TypeApplicationRejected:
		msg := fmt.Sprintf("Your %s application %s has been rejected", module, event.ApplnNo)
		if event.Remarks != "" {
			msg += ": " + event.Remarks
		}
		return msg
	default:
		return fmt.Sprintf("Your %s application %s has been sent for approval", module, event.ApplnNo)
	}
}
