package consumer

import (
	"context"
	"encoding/json"
	"errors"

	applicationerrors "approval-portal/internal/application/errors"
	"approval-portal/internal/events"
	"approval-portal/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeApplicationLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.application_lifecycle")
	log.Info("application lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("application lifecycle consumer stopped")
				return
			}
			log.Error("fetch application lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.ApplicationStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode application lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.RecordStatusChange(ctx, event); err != nil {
			if errors.Is(err, applicationerrors.ErrUnknownModule) {
				// Poison message; retrying cannot make the module valid.
				log.Warn("skipping lifecycle event for unknown module",
					zap.String("module", event.Module),
					zap.String("appln_no", event.ApplnNo),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			log.Error("record notification failed",
				zap.String("appln_no", event.ApplnNo),
				zap.String("emp_id", event.EmpID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit application lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("application lifecycle event handled",
			zap.String("appln_no", event.ApplnNo),
			zap.String("event_type", event.EventType),
		)
	}
}
