package utils

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation(t *testing.T) {
	body, err := RenderOrderConfirmation(OrderEmailData{
		Name:          "Asha <script>",
		OrderID:       42,
		TrackingID:    "TRKABCDEFGHIJ",
		PaymentMethod: "upi",
		TransactionID: "TXN000000000001",
		Total:         "1000.00",
		Lines:         []OrderEmailLine{{Name: "Keyboard", Quantity: 2, UnitPrice: "500.00", Total: "1000.00"}},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "TRKABCDEFGHIJ")
	assert.Contains(t, body, "<td>Keyboard</td><td>2</td>")
	assert.Contains(t, body, "ref TXN000000000001")
	assert.NotContains(t, body, "<script>")
}

func TestSendOrderConfirmation(t *testing.T) {
	mailer := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", From: "orders@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, mailer.SendOrderConfirmation("asha@example.com", OrderEmailData{OrderID: 7, Total: "10.00"}))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "orders@example.com", gotFrom)
	assert.Equal(t, []string{"asha@example.com"}, gotTo)
	assert.True(t, strings.Contains(string(gotMsg), "Subject: Order #7 confirmed"))

	mailer.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }
	assert.Error(t, mailer.SendOrderConfirmation("asha@example.com", OrderEmailData{OrderID: 7}))
}

func TestSendEmailRequiresConfig(t *testing.T) {
	assert.Error(t, NewMailer(SMTPConfig{}).SendEmail("a@example.com", "s", "b"))
}
