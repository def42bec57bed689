package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/pkg/jobs"
)

type notificationStoreStub struct {
	mu      sync.Mutex
	stored  []models.Notification
	failFor int
}

func (s *notificationStoreStub) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor > 0 {
		s.failFor--
		return errors.New("database unavailable")
	}
	s.stored = append(s.stored, *n)
	return nil
}

func (s *notificationStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

// stalledStore never completes a write until its context ends.
type stalledStore struct{}

func (stalledStore) Create(ctx context.Context, _ *models.Notification) error {
	<-ctx.Done()
	return ctx.Err()
}

type publisherStub struct {
	mu         sync.Mutex
	recipients []string
	err        error
}

func (p *publisherStub) Publish(recipient string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recipients = append(p.recipients, recipient)
	return p.err
}

func TestNotifyDeliversInlineWithoutQueue(t *testing.T) {
	store := &notificationStoreStub{}
	pub := &publisherStub{}
	svc := NewNotificationService(store, pub, NewMetricsService(), nil)

	svc.Notify(context.Background(), "admin-1", "submitted", "detail")

	require.Equal(t, 1, store.count())
	assert.Equal(t, "admin-1", store.stored[0].RecipientID)
	assert.NotEmpty(t, store.stored[0].ID)
	assert.Equal(t, "detail", store.stored[0].Detail)
	assert.Equal(t, []string{"admin-1"}, pub.recipients)
}

func TestNotifySkipsEmptyRecipient(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, nil, nil, nil)

	svc.Notify(context.Background(), "", "ignored", "")

	assert.Zero(t, store.count())
}

func TestNotifySwallowsDeliveryFailure(t *testing.T) {
	store := &notificationStoreStub{failFor: 1}
	pub := &publisherStub{}
	metrics := NewMetricsService()
	svc := NewNotificationService(store, pub, metrics, nil)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), "s1", "approved", "")
	})
	assert.Empty(t, pub.recipients)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("failed")))
	assert.Zero(t, metrics.Snapshot().NotificationsSent)
}

func TestDeliverKeepsStoredNotificationWhenPublishFails(t *testing.T) {
	store := &notificationStoreStub{}
	pub := &publisherStub{err: errors.New("nats: connection closed")}
	svc := NewNotificationService(store, pub, nil, nil)

	err := svc.Deliver(context.Background(), jobs.Job[models.Notification]{ID: "n1", Payload: models.Notification{ID: "n1", RecipientID: "s1"}})

	require.NoError(t, err)
	assert.Equal(t, 1, store.count())
}

func TestNotifyThroughQueueRetries(t *testing.T) {
	store := &notificationStoreStub{failFor: 1}
	svc := NewNotificationService(store, nil, nil, nil)
	queue := jobs.New[models.Notification]("notifications", svc.Deliver, jobs.Options{Workers: 2, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()
	svc.AttachQueue(queue)

	svc.Notify(ctx, "s1", "approved", "")
	svc.Notify(ctx, "s2", "approved", "")

	require.Eventually(t, func() bool { return store.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestNotifyDoesNotBlockWhenStoreStalls(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewNotificationService(stalledStore{}, nil, metrics, nil)
	queue := jobs.New[models.Notification]("notifications", svc.Deliver, jobs.Options{Workers: 2, MaxRetries: 0})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.AttachQueue(queue)

	const sent = 100
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sent; i++ {
			svc.Notify(context.Background(), "student", "approved", "")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a stalled notification store")
	}
	// two workers hold one job each and the default buffer holds 32
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.notifications.WithLabelValues("failed")), float64(sent-34))
}
