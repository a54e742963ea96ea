package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.CreateBookingResult, error)
	RescheduleBooking(ctx context.Context, params application.RescheduleBookingParams) (application.Booking, error)
	CancelBooking(ctx context.Context, params application.CancelBookingParams) error
	GetBooking(ctx context.Context, id string) (application.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error)
	SuggestAvailability(ctx context.Context, params application.AvailabilityParams) ([]application.Slot, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Input: req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createBookingResponse{
		Bookings:         toBookingDTOs(result.Bookings),
		SeriesID:         result.SeriesID,
		CancellationCode: result.CancellationCode,
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	stored, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(stored)})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), buildListBookingsParams(r.URL.Query()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{
		Bookings: toBookingDTOs(bookings),
	})
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	moved, err := h.service.RescheduleBooking(r.Context(), application.RescheduleBookingParams{
		BookingID: bookingID,
		Start:     parseTime(req.Start),
		End:       parseTime(req.End),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(moved)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.CancelBooking(r.Context(), application.CancelBookingParams{
		BookingID:        bookingID,
		CancellationCode: strings.TrimSpace(req.CancellationCode),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.AvailabilityParams{
		RoomID: strings.TrimSpace(query.Get("room_id")),
		Start:  parseTime(query.Get("start")),
	}
	if raw := strings.TrimSpace(query.Get("duration")); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			params.Duration = duration
		}
	}

	slots, err := h.service.SuggestAvailability(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Slots: toAppSlotDTOs(slots),
	})
}

type bookingRequest struct {
	RoomID        string `json:"room_id"`
	EmployeeID    string `json:"employee_id"`
	EmployeeEmail string `json:"employee_email"`
	Title         string `json:"title"`
	Attendees     int    `json:"attendees"`
	Start         string `json:"start"`
	End           string `json:"end"`
	IsRecurring   bool   `json:"is_recurring"`
	Pattern       string `json:"recurrence_pattern"`
	RecurrenceEnd string `json:"recurrence_end"`
}

func (r bookingRequest) toInput() application.BookingInput {
	input := application.BookingInput{
		RoomID:        strings.TrimSpace(r.RoomID),
		EmployeeID:    strings.TrimSpace(r.EmployeeID),
		EmployeeEmail: strings.TrimSpace(r.EmployeeEmail),
		Title:         strings.TrimSpace(r.Title),
		Attendees:     r.Attendees,
		Start:         parseTime(r.Start),
		End:           parseTime(r.End),
		IsRecurring:   r.IsRecurring,
		Pattern:       strings.TrimSpace(r.Pattern),
	}
	if ts := parseTime(r.RecurrenceEnd); !ts.IsZero() {
		input.RecurrenceEnd = &ts
	}
	return input
}

type rescheduleRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type cancelRequest struct {
	CancellationCode string `json:"cancellation_code"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type createBookingResponse struct {
	Bookings         []bookingDTO `json:"bookings"`
	SeriesID         string       `json:"series_id,omitempty"`
	CancellationCode string       `json:"cancellation_code"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type availabilityResponse struct {
	Slots []slotDTO `json:"slots"`
}

type bookingDTO struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"room_id"`
	EmployeeID  string  `json:"employee_id"`
	Title       string  `json:"title"`
	Attendees   int     `json:"attendees"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Cancelled   bool    `json:"cancelled"`
	SeriesID    *string `json:"series_id,omitempty"`
	IsRecurring bool    `json:"is_recurring"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	return bookingDTO{
		ID:          b.ID,
		RoomID:      b.RoomID,
		EmployeeID:  b.EmployeeID,
		Title:       b.Title,
		Attendees:   b.Attendees,
		Start:       b.Start.UTC().Format(time.RFC3339),
		End:         b.End.UTC().Format(time.RFC3339),
		Cancelled:   b.Cancelled,
		SeriesID:    b.SeriesID,
		IsRecurring: b.IsRecurring,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out
}

func toAppSlotDTOs(slots []application.Slot) []slotDTO {
	if len(slots) == 0 {
		return nil
	}
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{
			Start: slot.Start.UTC().Format(time.RFC3339),
			End:   slot.End.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func buildListBookingsParams(values url.Values) application.ListBookingsParams {
	params := application.ListBookingsParams{
		RoomID:     strings.TrimSpace(values.Get("room_id")),
		EmployeeID: strings.TrimSpace(values.Get("employee_id")),
	}

	if from := parseTime(values.Get("from")); !from.IsZero() {
		params.From = &from
	}
	if to := parseTime(values.Get("to")); !to.IsZero() {
		params.To = &to
	}
	if values.Get("include_cancelled") == "true" {
		params.IncludeCancelled = true
	}
	params.SortBy = strings.TrimSpace(values.Get("sort"))
	if values.Get("order") == "desc" {
		params.Descending = true
	}

	return params
}
