package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"net/url"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	FromName      string
	FromEmail     string
	PublicBaseURL string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// SignatureURL builds the public signature page link for a token.
func (s *EmailService) SignatureURL(token string) string {
	return fmt.Sprintf("%s/sign/%s", s.config.PublicBaseURL, url.PathEscape(token))
}

// SendSignatureRequest sends the signature invitation to a performer, with
// the receipt PDF attached when available.
func (s *EmailService) SendSignatureRequest(toEmail, performerName, receiptCode string, totalPayable string, token string, pdf []byte) error {
	htmlContent, err := s.renderSignatureRequest(performerName, receiptCode, totalPayable, s.SignatureURL(token))
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Ricevuta %s - firma richiesta", receiptCode)

	var message []byte
	if len(pdf) > 0 {
		message, err = s.buildMultipartEmail(toEmail, subject, htmlContent,
			fmt.Sprintf("Ricevuta_%s.pdf", receiptCode), pdf)
		if err != nil {
			return fmt.Errorf("failed to build email: %w", err)
		}
	} else {
		message = s.buildHTMLEmail(toEmail, subject, htmlContent)
	}

	return s.sendEmail(toEmail, message)
}

// SendSignatureReminder sends a reminder for a receipt still awaiting
// signature.
func (s *EmailService) SendSignatureReminder(toEmail, performerName, receiptCode string, token string) error {
	htmlContent, err := s.renderSignatureReminder(performerName, receiptCode, s.SignatureURL(token))
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Sollecito - ricevuta %s in attesa di firma", receiptCode)
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

// buildMultipartEmail builds an HTML email with a PDF attachment
func (s *EmailService) buildMultipartEmail(to, subject, htmlBody, filename string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: multipart/mixed; boundary=%q\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
		writer.Boundary(),
	)

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=\"UTF-8\"")
	htmlPart, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", "application/pdf")
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachPart, err := writer.CreatePart(attachHeader)
	if err != nil {
		return nil, err
	}

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(attachment)))
	base64.StdEncoding.Encode(encoded, attachment)
	if _, err := attachPart.Write(encoded); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return append([]byte(headers), buf.Bytes()...), nil
}

// renderSignatureRequest renders the signature invitation template
func (s *EmailService) renderSignatureRequest(performerName, receiptCode, totalPayable, signURL string) (string, error) {
	tmpl, err := template.New("signature_request").Parse(signatureRequestTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		PerformerName string
		ReceiptCode   string
		TotalPayable  string
		SignURL       string
		FromName      string
	}{
		PerformerName: performerName,
		ReceiptCode:   receiptCode,
		TotalPayable:  totalPayable,
		SignURL:       signURL,
		FromName:      s.config.FromName,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderSignatureReminder renders the reminder template
func (s *EmailService) renderSignatureReminder(performerName, receiptCode, signURL string) (string, error) {
	tmpl, err := template.New("signature_reminder").Parse(signatureReminderTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		PerformerName string
		ReceiptCode   string
		SignURL       string
		FromName      string
	}{
		PerformerName: performerName,
		ReceiptCode:   receiptCode,
		SignURL:       signURL,
		FromName:      s.config.FromName,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const signatureRequestTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Gentile {{.PerformerName}},</h2>
  <p>&egrave; disponibile la ricevuta <strong>{{.ReceiptCode}}</strong> per le tue prestazioni occasionali,
  per un importo di <strong>&euro; {{.TotalPayable}}</strong>.</p>
  <p>Per confermare i dati e firmare la ricevuta, apri il link seguente:</p>
  <p><a href="{{.SignURL}}" style="background-color: #2c7be5; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Firma la ricevuta</a></p>
  <p>Se il pulsante non funziona, copia questo indirizzo nel browser:<br>{{.SignURL}}</p>
  <p>Il link scade automaticamente; in caso di problemi contatta l'amministrazione.</p>
  <p>{{.FromName}}</p>
</body>
</html>
`

const signatureReminderTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Gentile {{.PerformerName}},</h2>
  <p>ti ricordiamo che la ricevuta <strong>{{.ReceiptCode}}</strong> &egrave; ancora in attesa di firma.</p>
  <p><a href="{{.SignURL}}" style="background-color: #2c7be5; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Firma la ricevuta</a></p>
  <p>Se il pulsante non funziona, copia questo indirizzo nel browser:<br>{{.SignURL}}</p>
  <p>{{.FromName}}</p>
</body>
</html>
`
