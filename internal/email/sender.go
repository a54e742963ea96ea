// Package email delivers booking lifecycle mail over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/example/room-booking/internal/application"
)

// SMTPSender implements application.Notifier over a plain SMTP relay.
type SMTPSender struct {
	addr     string
	sender   string
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a sender that relays through addr (host:port) using
// sender as the envelope from address.
func NewSMTPSender(addr, sender string) *SMTPSender {
	return &SMTPSender{
		addr:     addr,
		sender:   sender,
		sendMail: smtp.SendMail,
	}
}

// SendBookingConfirmation mails the booking summary and cancellation code to
// the employee who made the reservation.
func (s *SMTPSender) SendBookingConfirmation(ctx context.Context, employee application.Employee, room application.Room, result application.CreateBookingResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildConfirmationMessage(s.sender, employee, room, result)
	if err := s.sendMail(s.addr, nil, s.sender, []string{employee.Email}, msg); err != nil {
		return fmt.Errorf("failed to send confirmation mail: %w", err)
	}
	return nil
}

// SendCancellationNotice mails a short notice that the booking was cancelled.
func (s *SMTPSender) SendCancellationNotice(ctx context.Context, employee application.Employee, room application.Room, cancelled application.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildCancellationMessage(s.sender, employee, room, cancelled)
	if err := s.sendMail(s.addr, nil, s.sender, []string{employee.Email}, msg); err != nil {
		return fmt.Errorf("failed to send cancellation mail: %w", err)
	}
	return nil
}
