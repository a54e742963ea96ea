package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

var (
	errBadRequestBody    = errors.New("the request body could not be parsed")
	errInvalidBookingID  = errors.New("the booking ID is invalid")
	errInvalidRoomID     = errors.New("the room ID is invalid")
	errInvalidEmployeeID = errors.New("the employee ID is invalid")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "A resource with the same unique attribute already exists.",
		})
	case errors.Is(err, application.ErrAlreadyCancelled):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_CANCELLED",
			Message:   "This booking has already been cancelled.",
		})
	case errors.Is(err, application.ErrInvalidCancellationCode):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_CANCELLATION_CODE",
			Message:   "The cancellation code does not match this booking.",
		})
	case errors.Is(err, application.ErrEmployeeMismatch):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "EMPLOYEE_MISMATCH",
			Message:   "The employee ID and email do not match a directory entry.",
		})
	default:
		var conflictErr *booking.ConflictError
		if errors.As(err, &conflictErr) {
			r.writeJSON(ctx, w, http.StatusConflict, conflictResponse(conflictErr))
			return
		}

		var capErr *booking.CapacityError
		if errors.As(err, &capErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "There are problems with the submitted booking.",
				Errors:  map[string]string{"attendees": capErr.Error()},
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "There are problems with the submitted input.",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal server error occurred."})
	}
}

func conflictResponse(conflictErr *booking.ConflictError) errorResponse {
	code := "BOOKING_CONFLICT"
	if conflictErr.Reason == booking.ReasonPrimeTime {
		code = "PRIME_TIME_EXCEEDED"
	}
	return errorResponse{
		ErrorCode:   code,
		Message:     conflictErr.Error(),
		Suggestions: toSlotDTOs(conflictErr.Suggestions),
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state of the resource."
	case http.StatusUnprocessableEntity:
		return "There are problems with the submitted input."
	default:
		return "An internal server error occurred."
	}
}

type errorResponse struct {
	ErrorCode   string            `json:"error_code,omitempty"`
	Message     string            `json:"message"`
	Errors      map[string]string `json:"errors,omitempty"`
	Suggestions []slotDTO         `json:"suggestions,omitempty"`
}

type slotDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func toSlotDTOs(ranges []booking.TimeRange) []slotDTO {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]slotDTO, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, slotDTO{
			Start: r.Start.UTC().Format(time.RFC3339),
			End:   r.End.UTC().Format(time.RFC3339),
		})
	}
	return out
}
