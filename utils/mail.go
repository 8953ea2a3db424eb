package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether enough settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type OrderEmailLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

type OrderEmailData struct {
	Name          string
	OrderID       uint
	TrackingID    string
	TransactionID string
	PaymentMethod string
	Total         string
	Lines         []OrderEmailLine
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`<html><body>
<p>Hi {{.Name}},</p>
<p>Thank you for your order <strong>#{{.OrderID}}</strong>. Your tracking id is <strong>{{.TrackingID}}</strong>.</p>
<table>
<tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Total}}</td></tr>
{{end}}</table>
<p>Amount: ₹{{.Total}} ({{.PaymentMethod}}{{if .TransactionID}}, ref {{.TransactionID}}{{end}})</p>
</body></html>`))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// RenderOrderConfirmation returns the HTML body of an order confirmation.
func RenderOrderConfirmation(data OrderEmailData) (string, error) {
	var body bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) SendOrderConfirmation(emailTo string, data OrderEmailData) error {
	body, err := RenderOrderConfirmation(data)
	if err != nil {
		return err
	}
	return m.SendEmail(emailTo, fmt.Sprintf("Order #%d confirmed", data.OrderID), body)
}

func (m *Mailer) SendEmail(emailTo, emailSubject, htmlBody string) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		emailTo,
		emailSubject,
		htmlBody,
	)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
