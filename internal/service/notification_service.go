package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

type EventPublisher interface {
	Publish(recipient string, value interface{}) error
}

type notificationQueue interface {
	Enqueue(job jobs.Job[models.Notification]) error
}

// NotificationService is a fire-and-forget notification sink. Notify only
// enqueues; Deliver runs on the queue workers.
type NotificationService struct {
	store     notificationStore
	publisher EventPublisher
	queue     notificationQueue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationService constructs the sink. publisher may be nil when NATS is disabled.
func NewNotificationService(store notificationStore, publisher EventPublisher, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, publisher: publisher, metrics: metrics, logger: logger}
}

// AttachQueue sets the queue Notify enqueues onto. Without one, Notify delivers inline.
func (s *NotificationService) AttachQueue(q notificationQueue) {
	s.queue = q
}

// Notify schedules a message for recipient. Failures are logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, recipientID, message, detail string) {
	if recipientID == "" {
		return
	}
	n := models.Notification{ID: uuid.NewString(), RecipientID: recipientID, Message: message, Detail: detail}
	if s.queue == nil {
		if err := s.Deliver(ctx, jobs.Job[models.Notification]{ID: n.ID, Kind: "notification", Payload: n}); err != nil {
			s.logger.Warn("notification delivery failed", zap.String("recipient", recipientID), zap.Error(err))
		}
		return
	}
	if err := s.queue.Enqueue(jobs.Job[models.Notification]{ID: n.ID, Kind: "notification", Payload: n}); err != nil {
		s.metrics.RecordNotification(false)
		s.logger.Warn("notification not queued", zap.String("recipient", recipientID), zap.Error(err))
	}
}

// Deliver persists and publishes one notification. It is the queue handler.
func (s *NotificationService) Deliver(ctx context.Context, job jobs.Job[models.Notification]) error {
	n := job.Payload
	if err := s.store.Create(ctx, &n); err != nil {
		s.metrics.RecordNotification(false)
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(n.RecipientID, n); err != nil {
			s.logger.Warn("notification stored but not published", zap.String("id", n.ID), zap.Error(err))
		}
	}
	s.metrics.RecordNotification(true)
	return nil
}
