package mailer

import (
	"context"
	"testing"
)

func TestSendRejectsInvalidFromAddress(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 465, From: "not-an-address"})

	err := m.Send(context.Background(), Message{
		Subject:  "x",
		HTMLBody: "x",
		To:       "owner@example.com",
	})
	if err == nil {
		t.Error("Send() expected error for malformed from address")
	}
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 465, From: "fleet@example.com"})

	err := m.Send(context.Background(), Message{
		Subject:  "x",
		HTMLBody: "x",
		To:       "not-an-address",
	})
	if err == nil {
		t.Error("Send() expected error for malformed recipient address")
	}
}
