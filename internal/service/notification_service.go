package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/pkg/jobs"
	"github.com/noah-isme/campus-virtual-api/pkg/mail"
)

const deliveryTimeout = 15 * time.Second

// NotificationService delivers fire-and-forget email through a background
// queue. Delivery failures are logged and never reach the caller.
type NotificationService struct {
	mailer  mail.Mailer
	queue   *jobs.Queue[mail.Message]
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService builds the service and its queue. Call Start to
// begin delivering.
func NewNotificationService(mailer mail.Mailer, metrics *MetricsService, workers int, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{mailer: mailer, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.Options{
		Workers:     workers,
		TaskTimeout: deliveryTimeout,
		Logger:      logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop delivers what is already queued and halts the workers.
func (s *NotificationService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Notify schedules msg for delivery.
func (s *NotificationService) Notify(msg mail.Message) {
	if s == nil {
		return
	}
	if err := msg.Validate(); err != nil {
		s.logger.Warn("dropping invalid notification", zap.String("to", msg.To), zap.Error(err))
		return
	}
	if err := s.queue.Enqueue(jobs.Task[mail.Message]{ID: uuid.NewString(), Payload: msg}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("to", msg.To), zap.Error(err))
	}
}

// GradePublished tells a student a grade is available.
func (s *NotificationService) GradePublished(to, name, item string, grade, total float64) {
	subject := fmt.Sprintf("Nueva calificación: %s", item)
	text := fmt.Sprintf("Hola %s,\n\nTu calificación para \"%s\" ya está disponible: %.1f / %.1f.\n", name, item, grade, total)
	body := fmt.Sprintf("<p>Hola %s,</p><p>Tu calificación para <strong>%s</strong> ya está disponible: %.1f / %.1f.</p>",
		html.EscapeString(name), html.EscapeString(item), grade, total)
	s.Notify(mail.Message{To: to, ToName: name, Subject: subject, Text: text, HTML: body})
}

// Enrolled tells a student they were added to a course.
func (s *NotificationService) Enrolled(to, name, course string) {
	subject := fmt.Sprintf("Inscripción en %s", course)
	text := fmt.Sprintf("Hola %s,\n\nFuiste inscrito en el curso \"%s\".\n", name, course)
	body := fmt.Sprintf("<p>Hola %s,</p><p>Fuiste inscrito en el curso <strong>%s</strong>.</p>",
		html.EscapeString(name), html.EscapeString(course))
	s.Notify(mail.Message{To: to, ToName: name, Subject: subject, Text: text, HTML: body})
}

func (s *NotificationService) deliver(ctx context.Context, task jobs.Task[mail.Message]) error {
	msg := task.Payload
	err := s.mailer.Send(ctx, msg)
	s.metrics.RecordEmail(err == nil)
	if err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	return nil
}
