package notifications

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationTypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationTypeScheduleApproved NotificationType = "SCHEDULE_APPROVED"
	NotificationTypeScheduleRejected NotificationType = "SCHEDULE_REJECTED"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// EmailNotification is the message published to Kafka and consumed by the
// email workers.
type EmailNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	// Context
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	ScheduleID *uuid.UUID `json:"schedule_id,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	MaxRetries int                `json:"max_retries"`
	LastError  *string            `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

func NewEmailNotification(notType NotificationType, userID uuid.UUID, email, name string) *EmailNotification {
	return &EmailNotification{
		ID:             uuid.New(),
		Type:           notType,
		Priority:       GetDefaultPriority(notType),
		RecipientID:    userID,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        DefaultSubject(notType),
		TemplateData:   make(map[string]interface{}),
		Status:         NotificationStatusPending,
		MaxRetries:     3,
		CreatedAt:      time.Now(),
	}
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeBookingConfirmed, NotificationTypeBookingCancelled:
		return NotificationPriorityHigh
	case NotificationTypeBookingCreated:
		return NotificationPriorityMedium
	default:
		return NotificationPriorityLow
	}
}

func DefaultSubject(notType NotificationType) string {
	switch notType {
	case NotificationTypeBookingCreated:
		return "Your bus booking is reserved"
	case NotificationTypeBookingConfirmed:
		return "Your bus booking is confirmed"
	case NotificationTypeBookingCancelled:
		return "Your bus booking was cancelled"
	case NotificationTypeScheduleApproved:
		return "Your schedule was approved"
	case NotificationTypeScheduleRejected:
		return "Your schedule was rejected"
	default:
		return "BusLink notification"
	}
}

func (n *EmailNotification) IsExpired() bool {
	return n.ExpiresAt != nil && time.Now().After(*n.ExpiresAt)
}

func (n *EmailNotification) MarkSent() {
	now := time.Now()
	n.Status = NotificationStatusSent
	n.SentAt = &now
}

func (n *EmailNotification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	n.RetryCount++
	msg := err.Error()
	n.LastError = &msg
}
