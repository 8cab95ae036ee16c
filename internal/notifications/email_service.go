package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"time"

	"buslink/internal/shared/config"
)

// EmailService sends a rendered notification to its recipient.
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
	SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

func NewSMTPConfigFromApp(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  "BusLink",
		UseTLS:    true,
		Timeout:   30 * time.Second,
	}
}

type SMTPEmailService struct {
	config *SMTPConfig
}

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailService{config: config}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("SMTP password is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("📧 [SMTP] Sending %s notification to %s (%s)",
		notification.Type,
		notification.RecipientEmail,
		notification.RecipientName,
	)

	htmlBody, textBody := renderContent(notification)
	return s.SendHTML(ctx, notification.RecipientEmail, notification.Subject, htmlBody, textBody)
}

func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	message := s.buildMessage(to, subject, htmlBody, textBody)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, to, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 [SMTP] Email sent successfully to %s", to)
	return nil
}

// sendWithSTARTTLS upgrades the plain connection before authenticating, as
// Gmail and most relays require.
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.config.Host,
	}

	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return w.Close()
}

func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	message := fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += fmt.Sprintf("Content-Type: multipart/alternative; boundary=%s\r\n", boundary)
	message += "\r\n"

	if textBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/plain; charset=UTF-8\r\n"
		message += "\r\n"
		message += textBody + "\r\n"
	}

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/html; charset=UTF-8\r\n"
		message += "\r\n"
		message += htmlBody + "\r\n"
	}

	message += fmt.Sprintf("--%s--\r\n", boundary)

	return []byte(message)
}

// renderContent builds per-type email bodies from the notification's
// template data.
func renderContent(notification *EmailNotification) (string, string) {
	data := notification.TemplateData

	switch notification.Type {
	case NotificationTypeBookingCreated:
		htmlBody := fmt.Sprintf(`
			<h2>🚌 Booking Reserved</h2>
			<p>Hi %s,</p>
			<p>Your seats for <strong>%v → %v</strong> on %v are reserved.</p>
			<p>Booking Reference: <strong>%v</strong></p>
			<p>Seats: %v</p>
			<p>Total Amount: %v %v</p>
			<p>Complete the payment to confirm your booking.</p>
			<p>Best regards,<br>BusLink Team</p>
		`,
			notification.RecipientName,
			data["origin"], data["destination"], data["journey_date"],
			data["booking_ref"],
			data["seats"],
			data["total_amount"], data["currency"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour seats for %v -> %v on %v are reserved.\nBooking Reference: %v\nSeats: %v\nTotal Amount: %v %v\n\nComplete the payment to confirm your booking.\n\nBest regards,\nBusLink Team",
			notification.RecipientName,
			data["origin"], data["destination"], data["journey_date"],
			data["booking_ref"], data["seats"],
			data["total_amount"], data["currency"],
		)

		return htmlBody, textBody

	case NotificationTypeBookingConfirmed:
		htmlBody := fmt.Sprintf(`
			<h2>✅ Booking Confirmed</h2>
			<p>Hi %s,</p>
			<p>Your booking <strong>%v</strong> is confirmed. See you on board!</p>
			<p>Journey Date: %v</p>
			<p>Seats: %v</p>
			<p>Transaction: %v</p>
			<p>Best regards,<br>BusLink Team</p>
		`,
			notification.RecipientName,
			data["booking_ref"],
			data["journey_date"],
			data["seats"],
			data["transaction_id"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour booking %v is confirmed.\nJourney Date: %v\nSeats: %v\nTransaction: %v\n\nBest regards,\nBusLink Team",
			notification.RecipientName,
			data["booking_ref"], data["journey_date"], data["seats"], data["transaction_id"],
		)

		return htmlBody, textBody

	case NotificationTypeBookingCancelled:
		htmlBody := fmt.Sprintf(`
			<h2>❌ Booking Cancelled</h2>
			<p>Hi %s,</p>
			<p>Your booking <strong>%v</strong> has been cancelled.</p>
			<p>Released Seats: %v</p>
			<p>Best regards,<br>BusLink Team</p>
		`,
			notification.RecipientName,
			data["booking_ref"],
			data["seats"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour booking %v has been cancelled.\nReleased Seats: %v\n\nBest regards,\nBusLink Team",
			notification.RecipientName,
			data["booking_ref"], data["seats"],
		)

		return htmlBody, textBody

	case NotificationTypeScheduleApproved, NotificationTypeScheduleRejected:
		verdict := "approved"
		if notification.Type == NotificationTypeScheduleRejected {
			verdict = "rejected"
		}

		htmlBody := fmt.Sprintf(`
			<h2>Schedule Review</h2>
			<p>Hi %s,</p>
			<p>Your schedule <strong>%v → %v</strong> departing %v has been %s.</p>
			<p>Best regards,<br>BusLink Team</p>
		`,
			notification.RecipientName,
			data["origin"], data["destination"], data["start_time"],
			verdict,
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour schedule %v -> %v departing %v has been %s.\n\nBest regards,\nBusLink Team",
			notification.RecipientName,
			data["origin"], data["destination"], data["start_time"],
			verdict,
		)

		return htmlBody, textBody

	default:
		htmlBody := fmt.Sprintf(`
			<h2>%s</h2>
			<p>Hi %s,</p>
			<p>This is a notification from BusLink.</p>
			<p>Best regards,<br>BusLink Team</p>
		`,
			notification.Subject,
			notification.RecipientName,
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nThis is a notification from BusLink.\n\nBest regards,\nBusLink Team",
			notification.RecipientName,
		)

		return htmlBody, textBody
	}
}

// LogEmailService is used when SMTP is not configured. It logs the email
// instead of sending it.
type LogEmailService struct{}

func NewLogEmailService() *LogEmailService {
	return &LogEmailService{}
}

func (s *LogEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("📧 [LOG] %s notification for %s (%s): %s",
		notification.Type,
		notification.RecipientEmail,
		notification.RecipientName,
		notification.Subject,
	)
	return nil
}

func (s *LogEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	log.Printf("📧 [LOG] To: %s, Subject: %s", to, subject)
	return nil
}
