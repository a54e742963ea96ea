package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

const mailTimeLayout = "Mon, 02 Jan 2006 15:04"

func buildConfirmationMessage(from string, employee application.Employee, room application.Room, result application.CreateBookingResult) []byte {
	var b strings.Builder

	writeHeaders(&b, from, employee.Email, "Room booking confirmed")

	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", employee.Name)
	fmt.Fprintf(&b, "Your booking for room %s is confirmed.\r\n\r\n", room.Name)
	for _, booking := range result.Bookings {
		fmt.Fprintf(&b, "  %s - %s: %s\r\n",
			booking.Start.Format(mailTimeLayout),
			booking.End.Format(time.Kitchen),
			booking.Title,
		)
	}
	fmt.Fprintf(&b, "\r\nCancellation code: %s\r\n", result.CancellationCode)
	b.WriteString("Keep this code; it is required to cancel the booking.\r\n")

	return []byte(b.String())
}

func buildCancellationMessage(from string, employee application.Employee, room application.Room, cancelled application.Booking) []byte {
	var b strings.Builder

	writeHeaders(&b, from, employee.Email, "Room booking cancelled")

	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", employee.Name)
	fmt.Fprintf(&b, "Your booking %q in room %s on %s has been cancelled.\r\n",
		cancelled.Title,
		room.Name,
		cancelled.Start.Format(mailTimeLayout),
	)

	return []byte(b.String())
}

func writeHeaders(b *strings.Builder, from, to, subject string) {
	fmt.Fprintf(b, "From: %s\r\n", from)
	fmt.Fprintf(b, "To: %s\r\n", to)
	fmt.Fprintf(b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
}
