// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/models"
)

// NotificationService sends transactional email. Without SMTP settings it
// logs the message instead of sending, so local development needs no mail
// server.
type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config: config,
	}
}

func (s *NotificationService) SendPasswordReset(email, name, resetURL string) error {
	data := map[string]interface{}{
		"Name":      name,
		"ResetURL":  resetURL,
		"ExpiresIn": "1 hour",
	}
	return s.render("password_reset", "Password Reset Request", email, data)
}

func (s *NotificationService) SendSellerApproved(email, name, referralCode string) error {
	data := map[string]interface{}{
		"Name":         name,
		"ReferralCode": referralCode,
		"DashboardURL": fmt.Sprintf("%s/seller/dashboard", s.config.Frontend.BaseURL),
	}
	return s.render("seller_approved", "Your Seller Account Is Approved", email, data)
}

func (s *NotificationService) SendSellerRejected(email, name, reason string) error {
	data := map[string]interface{}{
		"Name":   name,
		"Reason": reason,
	}
	return s.render("seller_rejected", "Your Seller Application", email, data)
}

func (s *NotificationService) SendCommissionPaid(email, name string, payment *models.CommissionPayment) error {
	data := map[string]interface{}{
		"Name":        name,
		"Amount":      fmt.Sprintf("%.2f", payment.Amount),
		"PaymentType": string(payment.PaymentType),
		"BookingID":   payment.BookingID,
	}
	return s.render("commission_paid", "Commission Payment Sent", email, data)
}

func (s *NotificationService) SendRedemptionApproved(email, name string, redemption *models.CoinRedemption) error {
	data := map[string]interface{}{
		"Name":         name,
		"CoinAmount":   fmt.Sprintf("%.0f", redemption.CoinAmount),
		"PayoutMethod": redemption.PayoutMethod,
	}
	return s.render("redemption_approved", "Coin Redemption Approved", email, data)
}

func (s *NotificationService) SendRedemptionRejected(email, name, reason string) error {
	data := map[string]interface{}{
		"Name":   name,
		"Reason": reason,
	}
	return s.render("redemption_rejected", "Coin Redemption Rejected", email, data)
}

func (s *NotificationService) render(templateType, subject, to string, data map[string]interface{}) error {
	tmpl := s.getEmailTemplate(templateType)

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(to, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped, SMTP not configured")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"seller_approved": {
			Subject: "Your Seller Account Is Approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Congratulations {{.Name}}!</h2>
	<p>Your seller account has been approved. Your referral code is <strong>{{.ReferralCode}}</strong>.</p>
	<p>Share it with customers to earn commission on their bookings.</p>
	<a href="{{.DashboardURL}}">Go to your dashboard</a>
</body>
</html>`,
		},
		"seller_rejected": {
			Subject: "Your Seller Application",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Hello {{.Name}},</p>
	<p>Unfortunately your seller application was not approved.</p>
	<p>Reason: {{.Reason}}</p>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Password Reset Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Hello {{.Name}},</p>
	<p>Click the link below to reset your password. The link expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset Password</a>
</body>
</html>`,
		},
		"commission_paid": {
			Subject: "Commission Payment Sent",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Hello {{.Name}},</p>
	<p>A commission payment of {{.Amount}} ({{.PaymentType}}) for booking {{.BookingID}} has been sent to you.</p>
</body>
</html>`,
		},
		"redemption_approved": {
			Subject: "Coin Redemption Approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Hello {{.Name}},</p>
	<p>Your redemption of {{.CoinAmount}} coins via {{.PayoutMethod}} has been approved and is being processed.</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Reason}}</p>",
	}
}
