// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - GET /bookings, POST /bookings: booking listing and creation exchanging the
//     `bookingDTO` payload defined in booking_handler.go. Listings accept
//     room_id, employee_id, from, to, include_cancelled, sort
//     (title|room|employee|start|end) and order=desc query parameters. Creation
//     responds with every stored occurrence plus the cancellation code for the
//     series.
//   - GET /bookings/{id}, PUT /bookings/{id}: single booking lookup and
//     rescheduling. Rescheduling validates the new window against the room's
//     other bookings; the booking being moved never blocks itself.
//   - POST /bookings/{id}/cancel: cancels a booking. Body:
//     {"cancellation_code"}. The code must match the one issued at creation.
//   - GET /availability?room_id=&start=&duration=: proposes up to three open
//     slots of the requested duration on the day of the requested start.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id},
//     DELETE /rooms/{id}: room catalog endpoints exchanging the `roomDTO`
//     payload defined in room_handler.go.
//   - GET /employees, POST /employees, GET /employees/{id},
//     DELETE /employees/{id}: employee directory endpoints exchanging the
//     `employeeDTO` payload defined in employee_handler.go.
//
// Conflicting booking requests receive 409 responses carrying alternative
// slots. Request/response DTOs live alongside their respective handlers so
// tests and documentation share the same ground truth.
package http
