package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/confirmation-links/internal/application"
)

type confirmationService interface {
	Mint(ctx context.Context, params application.MintParams) (application.MintResult, error)
	Decide(ctx context.Context, params application.DecideParams) (application.DecideResult, error)
	ConfirmationPageData(ctx context.Context, id int64, signature string) (application.ConfirmationPage, error)
	Status(ctx context.Context, id int64) (application.Appointment, error)
}

// ConfirmationHandler exposes the capability-link protocol over HTTP.
type ConfirmationHandler struct {
	service   confirmationService
	responder responder
}

// NewConfirmationHandler constructs a ConfirmationHandler.
func NewConfirmationHandler(service confirmationService, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{service: service, responder: newResponder(logger)}
}

type mintRequest struct {
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ScheduledAt string `json:"scheduled_at"`
	TTLSeconds  *int64 `json:"ttl_seconds"`
}

type mintResponse struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	ConfirmPage string `json:"confirm_page"`
	OK          string `json:"ok"`
	No          string `json:"no"`
}

type appointmentResponse struct {
	ID          int64  `json:"id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
}

type confirmPageResponse struct {
	Appointment appointmentResponse `json:"appointment"`
	OK          string              `json:"ok"`
	No          string              `json:"no"`
}

type decisionResponse struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	AlreadyApplied bool   `json:"already_applied,omitempty"`
}

// Mint creates an appointment record and returns its ready-made link set.
func (h *ConfirmationHandler) Mint(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params := application.MintParams{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ScheduledAt: req.ScheduledAt,
	}
	if req.TTLSeconds != nil {
		ttl := time.Duration(*req.TTLSeconds) * time.Second
		params.TTL = &ttl
	}

	result, err := h.service.Mint(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, mintResponse{
		ID:          result.ID,
		Status:      string(result.Status),
		ConfirmPage: result.ConfirmPage,
		OK:          result.OKPath,
		No:          result.NoPath,
	})
}

// Status returns the public fields of an appointment record.
func (h *ConfirmationHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	record, err := h.service.Status(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentResponse(record))
}

// ConfirmPage returns the confirmation page data for a validated link.
func (h *ConfirmationHandler) ConfirmPage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	page, err := h.service.ConfirmationPageData(r.Context(), id, r.URL.Query().Get("sig"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, confirmPageResponse{
		Appointment: toAppointmentResponse(page.Appointment),
		OK:          page.OKPath,
		No:          page.NoPath,
	})
}

// Decide applies the decision carried by a capability link. The response is a
// terminal acknowledgment; no redirect is performed.
func (h *ConfirmationHandler) Decide(w http.ResponseWriter, r *http.Request, action string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	result, err := h.service.Decide(r.Context(), application.DecideParams{
		ID:        id,
		Action:    action,
		Signature: r.URL.Query().Get("sig"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	message := "Appointment confirmed. Thank you!"
	if result.Status == application.StatusDeclined {
		message = "Appointment declined. Thank you for letting us know."
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, decisionResponse{
		ID:             result.ID,
		Status:         string(result.Status),
		Message:        message,
		AlreadyApplied: result.AlreadyApplied,
	})
}

func toAppointmentResponse(record application.Appointment) appointmentResponse {
	// Public fields only: the signing salt stays server side.
	return appointmentResponse{
		ID:          record.ID,
		ClientName:  record.ClientName,
		ClientPhone: record.ClientPhone,
		ScheduledAt: record.ScheduledAt,
		Status:      string(record.Status),
	}
}
