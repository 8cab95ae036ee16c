package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// NotificationConsumer consumes notifications from Kafka and delivers them.
type NotificationConsumer interface {
	Start(ctx context.Context) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type KafkaConsumerConfig struct {
	Brokers       []string
	Topic         string
	GroupID       string
	Workers       int
	RetryBackoff  time.Duration
	MaxRetries    int
	SessionTimout time.Duration
}

func DefaultKafkaConsumerConfig() *KafkaConsumerConfig {
	return &KafkaConsumerConfig{
		Brokers:       []string{"localhost:9092"},
		Topic:         "buslink-notifications",
		GroupID:       "buslink-email-workers",
		Workers:       3,
		RetryBackoff:  2 * time.Second,
		MaxRetries:    3,
		SessionTimout: 30 * time.Second,
	}
}

type kafkaNotificationConsumer struct {
	consumerGroup sarama.ConsumerGroup
	emailService  EmailService
	config        *KafkaConsumerConfig

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

func NewKafkaNotificationConsumer(config *KafkaConsumerConfig, emailService EmailService) (NotificationConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimout
	saramaConfig.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	return &kafkaNotificationConsumer{
		consumerGroup: consumerGroup,
		emailService:  emailService,
		config:        config,
	}, nil
}

func (knc *kafkaNotificationConsumer) Start(ctx context.Context) error {
	knc.mu.Lock()
	defer knc.mu.Unlock()

	if knc.started {
		return fmt.Errorf("notification consumer already started")
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	knc.cancel = cancel
	knc.started = true

	handler := &notificationGroupHandler{
		emailService: knc.emailService,
		retryBackoff: knc.config.RetryBackoff,
		maxRetries:   knc.config.MaxRetries,
	}

	for i := 0; i < knc.config.Workers; i++ {
		knc.wg.Add(1)
		go func(workerID int) {
			defer knc.wg.Done()
			log.Printf("📬 Notification worker %d started", workerID)

			for {
				if err := knc.consumerGroup.Consume(consumeCtx, []string{knc.config.Topic}, handler); err != nil {
					log.Printf("Notification worker %d consume error: %v", workerID, err)
				}
				if consumeCtx.Err() != nil {
					log.Printf("📬 Notification worker %d stopped", workerID)
					return
				}
			}
		}(i)
	}

	knc.wg.Add(1)
	go func() {
		defer knc.wg.Done()
		for {
			select {
			case err, ok := <-knc.consumerGroup.Errors():
				if !ok {
					return
				}
				log.Printf("Notification consumer group error: %v", err)
			case <-consumeCtx.Done():
				return
			}
		}
	}()

	log.Printf("📬 Kafka notification consumer started with %d workers", knc.config.Workers)
	return nil
}

func (knc *kafkaNotificationConsumer) Stop() error {
	knc.mu.Lock()
	defer knc.mu.Unlock()

	if !knc.started {
		return nil
	}

	knc.cancel()
	knc.wg.Wait()
	knc.started = false

	if err := knc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka consumer group: %w", err)
	}

	log.Printf("📬 Kafka notification consumer stopped")
	return nil
}

func (knc *kafkaNotificationConsumer) HealthCheck(ctx context.Context) error {
	knc.mu.Lock()
	defer knc.mu.Unlock()

	if !knc.started {
		return fmt.Errorf("notification consumer not started")
	}
	return nil
}

// notificationGroupHandler implements sarama.ConsumerGroupHandler. Each
// claimed message is delivered with bounded retries before being marked,
// so a poison message cannot wedge the partition.
type notificationGroupHandler struct {
	emailService EmailService
	retryBackoff time.Duration
	maxRetries   int
}

func (h *notificationGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *notificationGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *notificationGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				log.Printf("Failed to process notification at %s/%d/%d: %v",
					message.Topic, message.Partition, message.Offset, err)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *notificationGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	if notification.IsExpired() {
		log.Printf("📬 Skipping expired %s notification for %s", notification.Type, notification.RecipientEmail)
		return nil
	}

	notification.Status = NotificationStatusSending

	err := h.sendWithRetry(ctx, &notification)
	if err != nil {
		notification.MarkFailed(err)
		return err
	}

	notification.MarkSent()
	return nil
}

// sendWithRetry delivers with exponential backoff between attempts.
func (h *notificationGroupHandler) sendWithRetry(ctx context.Context, notification *EmailNotification) error {
	var lastErr error
	backoff := h.retryBackoff

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		if lastErr = h.emailService.SendNotification(ctx, notification); lastErr == nil {
			return nil
		}

		log.Printf("📬 Delivery attempt %d/%d failed for %s: %v",
			attempt+1, h.maxRetries+1, notification.RecipientEmail, lastErr)
	}

	return fmt.Errorf("delivery failed after %d attempts: %w", h.maxRetries+1, lastErr)
}
