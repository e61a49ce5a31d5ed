package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/http/middleware"
	"github.com/MrJamesThe3rd/payreminder/internal/importer"
	"github.com/MrJamesThe3rd/payreminder/internal/notify"
	"github.com/MrJamesThe3rd/payreminder/internal/reconcile"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

type Syncer interface {
	Run(ctx context.Context, tenantID uuid.UUID) (reconcile.Result, error)
}

type Processor interface {
	Process(ctx context.Context) (notify.Result, error)
}

type Handler struct {
	svc       *reminder.Service
	importSvc *importer.Service
	syncer    Syncer
	processor Processor
}

func NewHandler(svc *reminder.Service, importSvc *importer.Service, syncer Syncer, processor Processor) *Handler {
	return &Handler{
		svc:       svc,
		importSvc: importSvc,
		syncer:    syncer,
		processor: processor,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/upcoming", h.upcoming)
	r.Get("/overdue", h.overdue)
	r.Get("/stats", h.stats)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/paid", h.markPaid)
}

// BatchRoutes are the expensive endpoints; the router rate limits them.
func (h *Handler) BatchRoutes(r chi.Router) {
	r.Post("/sync", h.sync)
	r.Post("/process", h.process)
}

func tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant")
	}

	return id, ok
}

func reminderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}

	return t, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	var (
		filter reminder.ListFilter
		err    error
	)

	if s := q.Get("type"); s != "" {
		filter.Type = new(reminder.Type(s))
	}

	if s := q.Get("is_paid"); s != "" {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid is_paid")
			return
		}

		filter.IsPaid = &paid
	}

	for name, dst := range map[string]*bool{"upcoming": &filter.Upcoming, "overdue": &filter.Overdue} {
		if s := q.Get(name); s != "" {
			if *dst, err = strconv.ParseBool(s); err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+name)
				return
			}
		}
	}

	for name, dst := range map[string]*int{"page": &filter.Page, "limit": &filter.Limit} {
		if s := q.Get(name); s != "" {
			if *dst, err = strconv.Atoi(s); err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+name)
				return
			}
		}
	}

	page, err := h.svc.List(r.Context(), tenant, filter)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func (h *Handler) upcoming(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var days int

	if s := r.URL.Query().Get("days"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}

		days = d
	}

	rs, err := h.svc.Upcoming(r.Context(), tenant, days)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(rs))
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	rs, err := h.svc.Overdue(r.Context(), tenant)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(rs))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	st, err := h.svc.DashboardStats(r.Context(), tenant)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		UpcomingCount:  st.UpcomingCount,
		UpcomingAmount: st.UpcomingAmount,
		OverdueCount:   st.OverdueCount,
		OverdueAmount:  st.OverdueAmount,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	rem, err := h.svc.Get(r.Context(), tenant, id)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rem))
}

type createReminderRequest struct {
	ClientCompanyID    *uuid.UUID    `json:"client_company_id"`
	Type               reminder.Type `json:"type"`
	DueDate            string        `json:"due_date"`
	Amount             int64         `json:"amount"`
	Currency           string        `json:"currency"`
	Description        string        `json:"description"`
	ReminderDaysBefore *int          `json:"reminder_days_before"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req createReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	params := reminder.CreateParams{
		ClientCompanyID:    req.ClientCompanyID,
		Type:               req.Type,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        req.Description,
		ReminderDaysBefore: req.ReminderDaysBefore,
	}

	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		params.DueDate = due
	}

	rem, err := h.svc.Create(r.Context(), tenant, params)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rem))
}

type updateReminderRequest struct {
	ClientCompanyID    *uuid.UUID     `json:"client_company_id,omitempty"`
	Type               *reminder.Type `json:"type,omitempty"`
	DueDate            *string        `json:"due_date,omitempty"`
	Amount             *int64         `json:"amount,omitempty"`
	Currency           *string        `json:"currency,omitempty"`
	Description        *string        `json:"description,omitempty"`
	ReminderDaysBefore *int           `json:"reminder_days_before,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	var req updateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	params := reminder.UpdateParams{
		ClientCompanyID:    req.ClientCompanyID,
		Type:               req.Type,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        req.Description,
		ReminderDaysBefore: req.ReminderDaysBefore,
	}

	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		params.DueDate = &due
	}

	rem, err := h.svc.Update(r.Context(), tenant, id, params)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rem))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), tenant, id); err != nil {
		httpError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	rem, err := h.svc.MarkAsPaid(r.Context(), tenant, id)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rem))
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), tenant, file)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidFile) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		httpError(w, r, err)

		return
	}

	rejected := res.Rejected
	if rejected == nil {
		rejected = []importer.RowError{}
	}

	writeJSON(w, http.StatusCreated, importResponse{
		Imported:  len(res.Created),
		Reminders: toResponseList(res.Created),
		Rejected:  rejected,
	})
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	res, err := h.syncer.Run(r.Context(), tenant)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{Created: res.Created, Updated: res.Updated})
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	res, err := h.processor.Process(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProcessResponse(res))
}
