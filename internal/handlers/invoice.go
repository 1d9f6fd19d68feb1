package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/sahasajib/invo/internal/auth"
	"github.com/sahasajib/invo/internal/httpx"
	"github.com/sahasajib/invo/internal/models"
	"github.com/sahasajib/invo/internal/services"
	"github.com/sahasajib/invo/internal/validation"
	"github.com/sahasajib/invo/internal/view"
)

type InvoiceHandler struct {
	db  *gorm.DB
	svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{db: db, svc: svc}
}

// List shows the invoice listing with optional client/status/emailsent
// filters. Empty query params mean the dimension is unfiltered, which also
// means "filter for the empty value" cannot be expressed from this surface.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	filter := services.ListFilter{ClientID: queryUint(r, "client_id")}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.InvoiceStatus(s)
		filter.Status = &status
	}
	if s := r.URL.Query().Get("emailsent"); s != "" {
		sent := models.EmailStatus(s)
		filter.EmailSent = &sent
	}

	invoices, total, err := h.svc.List(userID, filter, page)
	if err != nil {
		invoices, total = nil, 0
	}

	var clients []models.Client
	h.db.Where("user_id = ?", userID).Order("name").Find(&clients)

	flash := httpx.PopFlash(w, r)
	view.Render(w, r, "invoices/index.html", map[string]any{
		"Invoices": invoices,
		"Clients":  clients,
		"Total":    total,
		"Page":     page,
		"Limit":    services.ListPageSize,
		"Flash":    flash,
	})
}

// New shows the pre-invoice page. Tasks are only queried once both client and
// status have been picked; a failing task query shows no tasks rather than an
// error page.
func (h *InvoiceHandler) New(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var tasks []models.Task
	clientID := r.URL.Query().Get("client_id")
	status := r.URL.Query().Get("status")

	if clientID != "" && status != "" {
		v := make(validation.Violations)
		validation.Required("client_id", clientID, v)
		validation.NotIn("client_id", clientID, v, "none")
		validation.Required("status", status, v)
		validation.NotIn("status", status, v, "none")

		if v.Empty() {
			filter := services.TaskFilter{
				ClientID: queryUint(r, "client_id"),
				Status:   &status,
				From:     queryDate(r, "fromDate"),
				To:       queryDate(r, "endDate"),
			}
			tasks, _ = h.svc.TaskCandidates(filter)
		}
	}

	var clients []models.Client
	h.db.Where("user_id = ?", userID).Order("name").Find(&clients)

	view.Render(w, r, "invoices/new.html", map[string]any{
		"Clients":  clients,
		"Tasks":    tasks,
		"ClientID": clientID,
		"Status":   status,
		"FromDate": r.URL.Query().Get("fromDate"),
		"EndDate":  r.URL.Query().Get("endDate"),
	})
}

// Create handles the generate|preview submission from the pre-invoice page.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	r.ParseForm()

	taskIDs := formUints(r, "invoice_ids")
	discount := r.FormValue("discount")
	discountType := r.FormValue("discount_type")

	if r.FormValue("generate") == "yes" {
		if _, err := h.svc.Generate(r.Context(), userID, taskIDs, discount, discountType); err != nil {
			httpx.RedirectError(w, r, "/invoices", "Could not create invoice")
			return
		}
		httpx.RedirectSuccess(w, r, "/invoices", "Invoice Created")
		return
	}

	if r.FormValue("preview") == "yes" {
		preview, err := h.svc.BuildPreview(userID, taskIDs, discount, discountType)
		if err != nil {
			httpx.RedirectError(w, r, "/invoices/new", "Could not build preview")
			return
		}
		view.Render(w, r, "invoices/preview.html", map[string]any{
			"Number":   preview.Number,
			"User":     preview.User,
			"Tasks":    preview.Tasks,
			"Discount": preview.Discount,
			"Total":    preview.Total,
		})
		return
	}

	http.Redirect(w, r, "/invoices/new", http.StatusSeeOther)
}

// Pay toggles paid/unpaid.
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	invoice, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	if err := h.svc.TogglePaid(invoice); err != nil {
		httpx.RedirectError(w, r, "/invoices", "Could not update invoice")
		return
	}
	httpx.RedirectSuccess(w, r, "/invoices", "Invoice payment status updated")
}

// Delete removes the invoice's PDF and record.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	invoice, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), invoice); err != nil {
		httpx.RedirectError(w, r, "/invoices", "Could not delete invoice")
		return
	}
	httpx.RedirectSuccess(w, r, "/invoices", "Invoice Deleted")
}

// SendEmail dispatches the invoice PDF to the client.
func (h *InvoiceHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	invoice, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	if err := h.svc.SendEmail(r.Context(), userID, invoice); err != nil {
		httpx.RedirectError(w, r, "/invoices", "Could not send email")
		return
	}
	httpx.RedirectSuccess(w, r, "/invoices", "Email Sent")
}

// loadInvoice fetches the path invoice scoped to the acting user, writing a
// 404 on miss.
func (h *InvoiceHandler) loadInvoice(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	var invoice models.Invoice
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&invoice).Error; err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	return &invoice, true
}

func queryUint(r *http.Request, name string) *uint {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	id64, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(id64)
	return &id
}

func queryDate(r *http.Request, name string) *time.Time {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func formUints(r *http.Request, name string) []uint {
	var ids []uint
	for _, s := range r.Form[name] {
		if id64, err := strconv.ParseUint(s, 10, 32); err == nil {
			ids = append(ids, uint(id64))
		}
	}
	return ids
}
