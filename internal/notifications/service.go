package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"buslink/internal/shared/config"
)

// NotificationService is the surface the domain packages depend on. When
// Kafka is enabled notifications go through the producer and are delivered
// by the consumer workers; otherwise they are sent inline.
type NotificationService interface {
	SendBookingNotification(ctx context.Context, userID uuid.UUID, email, name string, bookingID uuid.UUID, notificationType string, templateData map[string]interface{}) error
	SendScheduleReviewNotification(ctx context.Context, userID uuid.UUID, email, name string, scheduleID uuid.UUID, approved bool, templateData map[string]interface{}) error
	Start(ctx context.Context) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type emailNotificationService struct {
	producer     NotificationProducer
	consumer     NotificationConsumer
	emailService EmailService
	async        bool
}

// NewEmailNotificationService wires up the notification pipeline from app
// config. SMTP settings are optional; without them emails are logged.
func NewEmailNotificationService(kafkaCfg config.KafkaConfig, emailCfg config.EmailConfig) (NotificationService, error) {
	var emailService EmailService
	if emailCfg.SMTPHost != "" {
		smtpService, err := NewSMTPEmailService(NewSMTPConfigFromApp(emailCfg))
		if err != nil {
			return nil, err
		}
		emailService = smtpService
	} else {
		log.Printf("📧 SMTP not configured, notifications will be logged")
		emailService = NewLogEmailService()
	}

	service := &emailNotificationService{
		emailService: emailService,
		async:        kafkaCfg.Enabled,
	}

	if kafkaCfg.Enabled {
		producerConfig := DefaultKafkaProducerConfig()
		producerConfig.Brokers = kafkaCfg.Brokers
		producerConfig.Topic = kafkaCfg.Topic

		producer, err := NewKafkaNotificationProducer(producerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create notification producer: %w", err)
		}

		consumerConfig := DefaultKafkaConsumerConfig()
		consumerConfig.Brokers = kafkaCfg.Brokers
		consumerConfig.Topic = kafkaCfg.Topic
		consumerConfig.GroupID = kafkaCfg.GroupID
		if kafkaCfg.Workers > 0 {
			consumerConfig.Workers = kafkaCfg.Workers
		}

		consumer, err := NewKafkaNotificationConsumer(consumerConfig, emailService)
		if err != nil {
			producer.Close()
			return nil, fmt.Errorf("failed to create notification consumer: %w", err)
		}

		service.producer = producer
		service.consumer = consumer
	}

	return service, nil
}

func (s *emailNotificationService) SendBookingNotification(ctx context.Context, userID uuid.UUID, email, name string, bookingID uuid.UUID, notificationType string, templateData map[string]interface{}) error {
	notification := NewEmailNotification(NotificationType(notificationType), userID, email, name)
	notification.BookingID = &bookingID
	if templateData != nil {
		notification.TemplateData = templateData
	}

	return s.dispatch(ctx, notification)
}

func (s *emailNotificationService) SendScheduleReviewNotification(ctx context.Context, userID uuid.UUID, email, name string, scheduleID uuid.UUID, approved bool, templateData map[string]interface{}) error {
	notType := NotificationTypeScheduleApproved
	if !approved {
		notType = NotificationTypeScheduleRejected
	}

	notification := NewEmailNotification(notType, userID, email, name)
	notification.ScheduleID = &scheduleID
	if templateData != nil {
		notification.TemplateData = templateData
	}

	return s.dispatch(ctx, notification)
}

func (s *emailNotificationService) dispatch(ctx context.Context, notification *EmailNotification) error {
	if s.async {
		return s.producer.PublishNotification(ctx, notification)
	}
	return s.emailService.SendNotification(ctx, notification)
}

func (s *emailNotificationService) Start(ctx context.Context) error {
	if s.consumer == nil {
		return nil
	}
	return s.consumer.Start(ctx)
}

func (s *emailNotificationService) Stop() error {
	if !s.async {
		return nil
	}

	var firstErr error
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			firstErr = err
		}
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *emailNotificationService) HealthCheck(ctx context.Context) error {
	if !s.async {
		return nil
	}
	if err := s.producer.HealthCheck(ctx); err != nil {
		return err
	}
	return s.consumer.HealthCheck(ctx)
}
