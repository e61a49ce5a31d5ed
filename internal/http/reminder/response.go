package reminder

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/importer"
	"github.com/MrJamesThe3rd/payreminder/internal/notify"
	"github.com/MrJamesThe3rd/payreminder/internal/reconcile"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

type reminderResponse struct {
	ID                 uuid.UUID     `json:"id"`
	ClientCompanyID    *uuid.UUID    `json:"client_company_id,omitempty"`
	InvoiceID          *uuid.UUID    `json:"invoice_id,omitempty"`
	CheckNoteID        *uuid.UUID    `json:"check_note_id,omitempty"`
	Type               reminder.Type `json:"type"`
	DueDate            string        `json:"due_date"`
	Amount             int64         `json:"amount"`
	Currency           string        `json:"currency"`
	Description        string        `json:"description"`
	ReminderDaysBefore int           `json:"reminder_days_before"`
	IsPaid             bool          `json:"is_paid"`
	PaidAt             *time.Time    `json:"paid_at,omitempty"`
	ReminderSent       bool          `json:"reminder_sent"`
	ReminderSentAt     *time.Time    `json:"reminder_sent_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          *time.Time    `json:"updated_at,omitempty"`
}

func toResponse(r *reminder.Reminder) reminderResponse {
	return reminderResponse{
		ID:                 r.ID,
		ClientCompanyID:    r.ClientCompanyID,
		InvoiceID:          r.InvoiceID,
		CheckNoteID:        r.CheckNoteID,
		Type:               r.Type,
		DueDate:            r.DueDate.Format(time.DateOnly),
		Amount:             r.Amount,
		Currency:           r.Currency,
		Description:        r.Description,
		ReminderDaysBefore: r.ReminderDaysBefore,
		IsPaid:             r.IsPaid,
		PaidAt:             r.PaidAt,
		ReminderSent:       r.ReminderSent,
		ReminderSentAt:     r.ReminderSentAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func toResponseList(rs []*reminder.Reminder) []reminderResponse {
	resp := make([]reminderResponse, len(rs))
	for i, r := range rs {
		resp[i] = toResponse(r)
	}

	return resp
}

type pageResponse struct {
	Items      []reminderResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

func toPageResponse(p *reminder.Page) pageResponse {
	return pageResponse{
		Items:      toResponseList(p.Items),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

type statsResponse struct {
	UpcomingCount  int   `json:"upcoming_count"`
	UpcomingAmount int64 `json:"upcoming_amount"`
	OverdueCount   int   `json:"overdue_count"`
	OverdueAmount  int64 `json:"overdue_amount"`
}

type importResponse struct {
	Imported  int                 `json:"imported"`
	Reminders []reminderResponse  `json:"reminders"`
	Rejected  []importer.RowError `json:"rejected"`
}

type syncResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type processError struct {
	ReminderID uuid.UUID `json:"reminder_id"`
	Error      string    `json:"error"`
}

type processResponse struct {
	Sent   int            `json:"sent"`
	Errors []processError `json:"errors"`
}

func toProcessResponse(res notify.Result) processResponse {
	resp := processResponse{Sent: res.Sent, Errors: make([]processError, 0, len(res.Errors))}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, processError{ReminderID: e.ReminderID, Error: e.Err.Error()})
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// httpError maps service errors to status codes. Unexpected errors are logged
// and reported without detail.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reminder.ErrNotFound):
		writeError(w, http.StatusNotFound, "reminder not found")
	case errors.Is(err, reminder.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reconcile.ErrSyncInProgress):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
