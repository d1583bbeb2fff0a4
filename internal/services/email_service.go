package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/models"
)

type EmailService struct {
	config *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{config: cfg}
}

// EmailData contains common email template data
type EmailData struct {
	AppName     string
	AppURL      string
	UserName    string
	UserEmail   string
	Subject     string
	Content     template.HTML
	ActionURL   string
	ActionLabel string
}

// BaseEmailTemplate is the base HTML email template
const BaseEmailTemplate = `
<!DOCTYPE html>
<html dir="auto">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Tahoma, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #0f766e 0%, #134e4a 100%); color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; }
        .button { display: inline-block; background: linear-gradient(135deg, #0f766e 0%, #134e4a 100%); color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; margin: 20px 0; }
        .footer { text-align: center; color: #888; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.AppName}}</h1>
        </div>
        <div class="content">
            <p>Hi {{.UserName}},</p>
            {{.Content}}
            {{if .ActionURL}}
            <p style="text-align: center;">
                <a href="{{.ActionURL}}" class="button">{{.ActionLabel}}</a>
            </p>
            {{end}}
        </div>
        <div class="footer">
            <p>&copy; {{.AppName}}. All rights reserved.</p>
            <p>This is an automated message. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to, subject, body string) error {
	if s.config.SMTPHost == "" {
		// Log email instead of sending in development
		fmt.Printf("\n=== EMAIL ===\nTo: %s\nSubject: %s\nBody: %s\n=============\n", to, subject, body)
		return nil
	}

	from := s.config.FromEmail
	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		from, to, subject)

	msg := []byte(headers + body)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

// renderEmail renders an email using the base template
func (s *EmailService) renderEmail(data EmailData) (string, error) {
	data.AppName = s.config.AppName
	data.AppURL = s.config.AppURL

	tmpl, err := template.New("email").Parse(BaseEmailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// SendVerificationEmail sends an email verification link
func (s *EmailService) SendVerificationEmail(user *models.User) error {
	data := EmailData{
		UserName:    user.FullName,
		UserEmail:   user.Email,
		Subject:     "Verify your email address",
		Content:     template.HTML("<p>Thank you for registering with " + s.config.AppName + ". Please click the button below to verify your email address.</p>"),
		ActionURL:   fmt.Sprintf("%s/verify-email?token=%s", s.config.AppURL, user.VerifyToken),
		ActionLabel: "Verify Email",
	}

	body, err := s.renderEmail(data)
	if err != nil {
		return err
	}

	return s.sendEmail(user.Email, data.Subject, body)
}

// SendPasswordResetEmail sends a password reset link
func (s *EmailService) SendPasswordResetEmail(user *models.User, token string) error {
	data := EmailData{
		UserName:    user.FullName,
		UserEmail:   user.Email,
		Subject:     "Reset your password",
		Content:     template.HTML("<p>You requested a password reset. Click the button below to reset your password. This link will expire in 24 hours.</p>"),
		ActionURL:   fmt.Sprintf("%s/reset-password?token=%s", s.config.AppURL, token),
		ActionLabel: "Reset Password",
	}

	body, err := s.renderEmail(data)
	if err != nil {
		return err
	}

	return s.sendEmail(user.Email, data.Subject, body)
}

// SendNdaRequestEmail tells a project owner a company wants to view
// their gated project and that their information is needed.
func (s *EmailService) SendNdaRequestEmail(owner *models.User, project *models.Project) error {
	content := fmt.Sprintf(`
		<p>A development company has requested access to your project <strong>%s</strong> under a confidentiality agreement.</p>
		<p>To proceed, the signature provider needs your legal information (name, national ID, phone, birth date, and address). The company's identity stays hidden until your deposit is paid.</p>
	`, project.Title)

	data := EmailData{
		UserName:    owner.FullName,
		UserEmail:   owner.Email,
		Subject:     fmt.Sprintf("NDA request for %s", project.Title),
		Content:     template.HTML(content),
		ActionURL:   fmt.Sprintf("%s/projects/%s/nda", s.config.AppURL, project.ID),
		ActionLabel: "Complete Your Information",
	}

	body, err := s.renderEmail(data)
	if err != nil {
		return err
	}

	return s.sendEmail(owner.Email, data.Subject, body)
}

// SendNdaInvitationEmail tells the company the signing invitation is out.
func (s *EmailService) SendNdaInvitationEmail(company *models.User, project *models.Project, signingURL string) error {
	content := fmt.Sprintf(`
		<p>The signing invitation for the confidentiality agreement on <strong>%s</strong> has been sent.</p>
		<p>Check your email from the signature provider, or open the signing page directly below. Project details unlock once both parties have signed.</p>
	`, project.Title)

	data := EmailData{
		UserName:    company.FullName,
		UserEmail:   company.Email,
		Subject:     fmt.Sprintf("Signing invitation sent for %s", project.Title),
		Content:     template.HTML(content),
		ActionURL:   signingURL,
		ActionLabel: "Open Signing Page",
	}

	body, err := s.renderEmail(data)
	if err != nil {
		return err
	}

	return s.sendEmail(company.Email, data.Subject, body)
}

// SendNdaCompletedEmail notifies a party that the agreement is fully
// signed and disclosure is unlocked.
func (s *EmailService) SendNdaCompletedEmail(recipient *models.User, project *models.Project) error {
	content := fmt.Sprintf(`
		<p>The confidentiality agreement for <strong>%s</strong> has been signed by both parties.</p>
		<p>Full project details and messaging are now unlocked.</p>
	`, project.Title)

	data := EmailData{
		UserName:    recipient.FullName,
		UserEmail:   recipient.Email,
		Subject:     fmt.Sprintf("NDA completed for %s", project.Title),
		Content:     template.HTML(content),
		ActionURL:   fmt.Sprintf("%s/projects/%s", s.config.AppURL, project.ID),
		ActionLabel: "View Project",
	}

	body, err := s.renderEmail(data)
	if err != nil {
		return err
	}

	return s.sendEmail(recipient.Email, data.Subject, body)
}

// SendNewOfferEmail notifies a project owner of a new bid. The bidding
// company is not named here; identity stays blinded until the deposit
// is settled.
func (s *EmailService) SendNewOfferEmail(owner *models.User, project *models.Project) error {
	content := fmt.Sprintf(`
		<p>Your project <strong>%s</strong> has received a new offer from a development company.</p>
		<p>Log in to review the proposed terms.</p>
	`, project.Title)

	data := EmailData{
		UserName:    owner.FullName,
		UserEmail:   owner.Email,
		Subject:     fmt.Sprintf("New offer for %s", project.Title),
		Content:     template.HTML(content),
		ActionURL:   fmt.Sprintf("%s/projects/%s/offers", s.config.AppURL, project.ID),
		ActionLabel: "View Offers",
	}

	body, err := s.renderEmail(data)
	if err != nil {
		return err
	}

	return s.sendEmail(owner.Email, data.Subject, body)
}
