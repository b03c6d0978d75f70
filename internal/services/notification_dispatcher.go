package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"returns-service/internal/clients"
	"returns-service/internal/models"
)

// ReturnNotification carries what a status email needs
type ReturnNotification struct {
	ReturnRequestID string              `json:"returnRequestId,omitempty"`
	CustomerEmail   string              `json:"customerEmail" binding:"required,email"`
	CustomerName    string              `json:"customerName"`
	OrderNumber     string              `json:"orderNumber" binding:"required"`
	Status          models.ReturnStatus `json:"status" binding:"required"`
	StoreName       string              `json:"storeName"`
}

// Notifier queues status notifications without blocking the caller
type Notifier interface {
	Dispatch(notification ReturnNotification) bool
}

var errNoRecipient = errors.New("customer email is empty")

// EmailNotifier renders and sends status emails synchronously
type EmailNotifier struct {
	client clients.EmailClient
	from   string
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(client clients.EmailClient, from string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from}
}

// Send renders the template for the status and hands it to the email provider
func (n *EmailNotifier) Send(ctx context.Context, notification ReturnNotification) (json.RawMessage, error) {
	if notification.CustomerEmail == "" {
		return nil, errNoRecipient
	}

	email, err := BuildReturnEmail(notification.Status, notification.CustomerName, notification.OrderNumber, notification.StoreName)
	if err != nil {
		return nil, err
	}

	return n.client.SendEmail(ctx, &clients.EmailMessage{
		From:    n.from,
		To:      []string{notification.CustomerEmail},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
}

type notificationSender interface {
	Send(ctx context.Context, notification ReturnNotification) (json.RawMessage, error)
}

// NotificationDispatcher runs notification sends on a bounded background queue.
// Failures are logged and never reach the caller of Dispatch.
type NotificationDispatcher struct {
	sender      notificationSender
	queue       chan ReturnNotification
	workers     int
	sendTimeout time.Duration
	logger      *logrus.Entry

	wg       sync.WaitGroup
	mu       sync.RWMutex
	started  bool
	stopped  bool
	stopOnce sync.Once
}

// NewNotificationDispatcher creates a dispatcher; call Start before Dispatch
func NewNotificationDispatcher(sender notificationSender, workers, queueSize int, logger *logrus.Logger) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		sender:      sender,
		queue:       make(chan ReturnNotification, queueSize),
		workers:     workers,
		sendTimeout: 30 * time.Second,
		logger:      logger.WithField("component", "notification_dispatcher"),
	}
}

// Start launches the worker goroutines
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.WithField("workers", d.workers).Info("Notification dispatcher started")
}

// Dispatch enqueues a notification; false when it was dropped
func (d *NotificationDispatcher) Dispatch(notification ReturnNotification) bool {
	log := d.logger.WithFields(logrus.Fields{
		"return_request_id": notification.ReturnRequestID,
		"status":            notification.Status,
	})

	if notification.CustomerEmail == "" {
		log.Warn("Skipping notification without customer email")
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		log.Warn("Notification dispatcher stopped, dropping notification")
		return false
	}

	select {
	case d.queue <- notification:
		return true
	default:
		log.Warn("Notification queue full, dropping notification")
		return false
	}
}

// Stop closes the queue and waits for queued notifications to drain
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

func (d *NotificationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for notification := range d.queue {
		d.send(ctx, notification)
	}
}

func (d *NotificationDispatcher) send(ctx context.Context, notification ReturnNotification) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
	defer cancel()

	log := d.logger.WithFields(logrus.Fields{
		"return_request_id": notification.ReturnRequestID,
		"status":            notification.Status,
		"order_number":      notification.OrderNumber,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Notification send panicked")
		}
	}()

	if _, err := d.sender.Send(sendCtx, notification); err != nil {
		log.WithError(err).Error("Failed to send return notification")
		return
	}
	log.Info("Return notification sent")
}
