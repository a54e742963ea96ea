package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingSender(t *testing.T) (*SMTPSender, *capturedMail) {
	t.Helper()

	captured := &capturedMail{}
	sender := NewSMTPSender("mail.example.com:25", "bookings@example.com")
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return nil
	}
	return sender, captured
}

func TestSMTPSender_SendBookingConfirmation(t *testing.T) {
	t.Parallel()

	sender, captured := newCapturingSender(t)

	start := time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	result := application.CreateBookingResult{
		Bookings: []application.Booking{{
			Title: "Design sync",
			Start: start,
			End:   start.Add(time.Hour),
		}},
		CancellationCode: "A1B2C3D4",
	}

	err := sender.SendBookingConfirmation(context.Background(),
		application.Employee{Name: "Dana Silva", Email: "dana@example.com"},
		application.Room{Name: "Aurora"},
		result,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.addr != "mail.example.com:25" {
		t.Fatalf("unexpected relay %q", captured.addr)
	}
	if captured.from != "bookings@example.com" {
		t.Fatalf("unexpected sender %q", captured.from)
	}
	if len(captured.to) != 1 || captured.to[0] != "dana@example.com" {
		t.Fatalf("unexpected recipients %v", captured.to)
	}
	for _, want := range []string{
		"Subject: Room booking confirmed",
		"room Aurora",
		"Design sync",
		"Cancellation code: A1B2C3D4",
	} {
		if !strings.Contains(captured.msg, want) {
			t.Errorf("message missing %q:\n%s", want, captured.msg)
		}
	}
}

func TestSMTPSender_SendCancellationNotice(t *testing.T) {
	t.Parallel()

	sender, captured := newCapturingSender(t)

	err := sender.SendCancellationNotice(context.Background(),
		application.Employee{Name: "Dana Silva", Email: "dana@example.com"},
		application.Room{Name: "Aurora"},
		application.Booking{Title: "Design sync", Start: time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Subject: Room booking cancelled",
		"\"Design sync\"",
		"room Aurora",
	} {
		if !strings.Contains(captured.msg, want) {
			t.Errorf("message missing %q:\n%s", want, captured.msg)
		}
	}
}

func TestSMTPSender_WrapsDeliveryErrors(t *testing.T) {
	t.Parallel()

	sender := NewSMTPSender("mail.example.com:25", "bookings@example.com")
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := sender.SendBookingConfirmation(context.Background(),
		application.Employee{Email: "dana@example.com"},
		application.Room{},
		application.CreateBookingResult{},
	)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped delivery error, got %v", err)
	}
}

func TestSMTPSender_RespectsCancelledContext(t *testing.T) {
	t.Parallel()

	sender, captured := newCapturingSender(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.SendBookingConfirmation(ctx, application.Employee{}, application.Room{}, application.CreateBookingResult{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if captured.msg != "" {
		t.Fatalf("mail must not be sent after cancellation")
	}
}
