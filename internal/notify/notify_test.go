package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSMTPSender_BuildsPlainTextMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "samplefit@example.com"}, nil)

	var sent *mail.Msg
	s.dial = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), "ops@example.com", "OTP", "code 123456"))
	require.NotNil(t, sent)

	var buf bytes.Buffer
	_, err := sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "To: <ops@example.com>")
	assert.Contains(t, buf.String(), "From: <samplefit@example.com>")
	assert.Contains(t, buf.String(), "Subject: OTP")
	assert.Contains(t, buf.String(), "code 123456")
}

func TestSMTPSender_Errors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "samplefit@example.com"}, zap.New(core))
	s.dial = func(context.Context, *mail.Msg) error { return errors.New("454 try later") }

	err := s.Send(context.Background(), "ops@example.com", "OTP", "body")
	require.ErrorContains(t, err, "454 try later")
	assert.Equal(t, 1, logs.FilterMessage("smtp send failed").Len())

	err = s.Send(context.Background(), "not an address", "OTP", "body")
	require.ErrorContains(t, err, "set recipient")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), "ops@example.com", "OTP", "passcode 000111"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ops@example.com", fields["to"])
	assert.True(t, strings.Contains(fields["body"].(string), "000111"))
}
