package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/keighl/postmark"

	"food-delivery/models"
)

// EmailService sends transactional email through Postmark. When no API token
// is configured the service is disabled and every send is a silent no-op, so
// the order flow keeps working without the external dependency.
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes the service from POSTMARK_API_TOKEN and
// EMAIL_SENDER.
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		log.Println("POSTMARK_API_TOKEN not set; outgoing email disabled")
		return &EmailService{}
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es == nil || es.client == nil {
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendWelcomeEmail greets a freshly registered user.
func (es *EmailService) SendWelcomeEmail(toEmail, name string) error {
	subject := "Welcome to Food Delivery"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your account has been created. Browse the menu and place your first order any time.<br><br>Enjoy your meal!",
		name,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail confirms a paid order to the user.
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Your payment for order <strong>%s</strong> has been received.<br><br>Total Amount: <strong>$%.2f</strong><br>Status: <strong>%s</strong><br><br>Thank you for ordering with us!",
		order.ID.Hex(),
		order.Amount,
		order.Status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
