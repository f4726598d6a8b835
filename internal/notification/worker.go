package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"inventory-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Store is the part of the repository the workers read and clean up.
type Store interface {
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	SubscriptionsForProperty(ctx context.Context, propertyID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// WorkerPool sends "unit available again" pushes to everyone watching a unit.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   Store
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s Store, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*16),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case propertyID := <-wp.jobs:
			wp.sendNotificationsForProperty(ctx, propertyID)
		case <-ctx.Done():
			wp.log.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a notification job. It never blocks the caller: when the
// queue is full the job is dropped and logged.
func (wp *WorkerPool) Dispatch(propertyID string) {
	select {
	case wp.jobs <- propertyID:
	default:
		wp.log.Warn("notification queue full, dropping job", zap.String("property_id", propertyID))
	}
}

func (wp *WorkerPool) sendNotificationsForProperty(ctx context.Context, propertyID string) {
	subscriptions, err := wp.store.SubscriptionsForProperty(ctx, propertyID)
	if err != nil {
		wp.log.Error("failed to fetch subscriptions", zap.String("property_id", propertyID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := propertyID
	if p, err := wp.store.GetProperty(ctx, propertyID); err != nil {
		wp.log.Warn("failed to fetch property", zap.String("property_id", propertyID), zap.Error(err))
	} else {
		label = p.UnitNumber
		if p.ProjectName != "" {
			label = fmt.Sprintf("%s (%s)", p.UnitNumber, p.ProjectName)
		}
	}

	wp.log.Info("sending availability notifications",
		zap.String("property_id", propertyID),
		zap.Int("subscriptions", len(subscriptions)))
	message := fmt.Sprintf("Unit %s is available again", label)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
