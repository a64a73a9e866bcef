package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReportReady(toEmail, sessionTitle string, sessionID string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// SendReportReady notifies the owner that a research report finished while
// they were away from the chat.
func (s *emailService) SendReportReady(toEmail, sessionTitle string, sessionID string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your research report is ready")

	sessionLink := fmt.Sprintf("%s/chat/%s", s.frontendURL, sessionID)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Research complete</h2>
			<p>The report for <strong>%s</strong> is ready. Open the chat to read it:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open report</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, sessionTitle, sessionLink, sessionLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send report notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Report notification sent to %s\n", toEmail)
	return nil
}
