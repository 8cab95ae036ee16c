package notifications

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewEmailNotificationDefaults(t *testing.T) {
	userID := uuid.New()
	n := NewEmailNotification(NotificationTypeBookingConfirmed, userID, "rider@example.com", "Rider")

	if n.Status != NotificationStatusPending {
		t.Fatalf("expected PENDING status, got %s", n.Status)
	}
	if n.Priority != NotificationPriorityHigh {
		t.Fatalf("expected HIGH priority for confirmation, got %s", n.Priority)
	}
	if n.RecipientID != userID || n.RecipientEmail != "rider@example.com" {
		t.Fatalf("recipient not set: %+v", n)
	}
	if n.Subject == "" {
		t.Fatal("expected a default subject")
	}
	if n.MaxRetries != 3 {
		t.Fatalf("expected 3 max retries, got %d", n.MaxRetries)
	}
}

func TestNotificationExpiry(t *testing.T) {
	n := NewEmailNotification(NotificationTypeBookingCreated, uuid.New(), "rider@example.com", "Rider")
	if n.IsExpired() {
		t.Fatal("notification without expiry should not be expired")
	}

	past := time.Now().Add(-time.Minute)
	n.ExpiresAt = &past
	if !n.IsExpired() {
		t.Fatal("notification past its expiry should be expired")
	}
}

func TestRenderBookingCreatedContent(t *testing.T) {
	n := NewEmailNotification(NotificationTypeBookingCreated, uuid.New(), "rider@example.com", "Rider")
	n.TemplateData = map[string]interface{}{
		"origin":       "Colombo",
		"destination":  "Kandy",
		"journey_date": "2026-09-01",
		"booking_ref":  "BUS-20260828-ABCDEF",
		"seats":        "A1, A2",
		"total_amount": 3200.0,
		"currency":     "LKR",
	}

	html, text := renderContent(n)
	for _, want := range []string{"BUS-20260828-ABCDEF", "A1, A2", "Kandy"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html body missing %q", want)
		}
		if !strings.Contains(text, want) {
			t.Fatalf("text body missing %q", want)
		}
	}
}

func TestRenderScheduleReviewContent(t *testing.T) {
	n := NewEmailNotification(NotificationTypeScheduleRejected, uuid.New(), "driver@example.com", "Driver")
	n.TemplateData = map[string]interface{}{
		"origin":      "Galle",
		"destination": "Matara",
		"start_time":  "07:15",
	}

	_, text := renderContent(n)
	if !strings.Contains(text, "rejected") {
		t.Fatalf("expected rejection verdict in body, got %q", text)
	}
}
