// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPaymentReceipt(toEmail, companyName string, amount float64, transactionId string, paidAt time.Time) error
	SendExpiryNotice(toEmail, companyName string, amountDue float64, graceEnd time.Time) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendPaymentReceipt(toEmail, companyName string, amount float64, transactionId string, paidAt time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Payment Received")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thank you, %s!</h2>
			<p>We received your subscription payment.</p>
			<table style="border-collapse: collapse;">
				<tr><td style="padding: 4px 12px 4px 0;">Amount</td><td><b>$%.2f</b></td></tr>
				<tr><td style="padding: 4px 12px 4px 0;">Transaction</td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;">Date</td><td>%s</td></tr>
			</table>
			<p>Your subscription is active for the next 30 days.</p>
		</div>
	`, companyName, amount, transactionId, paidAt.Format("Jan 2, 2006 15:04 MST"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send receipt to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Receipt sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendExpiryNotice(toEmail, companyName string, amountDue float64, graceEnd time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Subscription Has Expired")

	// Construct the clickable link pointing to the FRONTEND
	payLink := fmt.Sprintf("%s/subscription.html", s.frontendURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Subscription Expired</h2>
			<p>Hi %s, your subscription has expired and dashboard access is paused.</p>
			<p>Amount due: <b>$%.2f</b></p>
			<p>Pay before <b>%s</b> to avoid your account being marked overdue.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Renew Now</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, companyName, amountDue, graceEnd.Format("Jan 2, 2006"), payLink, payLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send expiry notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Expiry notice sent to %s\n", toEmail)
	return nil
}
