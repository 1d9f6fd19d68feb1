// Package services holds the invoice workflow: listing and filtering,
// selecting billable tasks, generating the PDF and its record, toggling
// payment state, deletion, and email dispatch.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sahasajib/invo/internal/logger"
	"github.com/sahasajib/invo/internal/mailer"
	"github.com/sahasajib/invo/internal/models"
	"github.com/sahasajib/invo/internal/pdf"
	"github.com/sahasajib/invo/internal/storage"
)

// ListPageSize is the fixed page size of the invoice listing.
const ListPageSize = 10

// PDFRenderer renders an invoice document to PDF bytes.
type PDFRenderer interface {
	Render(doc pdf.Document) ([]byte, error)
}

// InvoiceService orchestrates the invoice lifecycle. It touches the invoice
// table, the file store, and the mailer; tasks and clients it only reads.
type InvoiceService struct {
	db       *gorm.DB
	renderer PDFRenderer
	files    storage.Store
	mail     mailer.Mailer
	log      *logger.Logger
}

func NewInvoiceService(db *gorm.DB, renderer PDFRenderer, files storage.Store, mail mailer.Mailer, log *logger.Logger) *InvoiceService {
	return &InvoiceService{db: db, renderer: renderer, files: files, mail: mail, log: log}
}

// ListFilter narrows the invoice listing. A nil field means the dimension is
// not filtered at all; the HTTP layer maps empty query params to nil, which
// also means a deliberately empty filter value cannot be expressed.
type ListFilter struct {
	ClientID  *uint
	Status    *models.InvoiceStatus
	EmailSent *models.EmailStatus
}

// List returns one page of the user's invoices, newest first, each with its
// client preloaded.
func (s *InvoiceService) List(userID uint, f ListFilter, page int) ([]models.Invoice, int64, error) {
	if page < 1 {
		page = 1
	}

	base := func() *gorm.DB {
		q := s.db.Model(&models.Invoice{}).Where("user_id = ?", userID)
		if f.ClientID != nil {
			q = q.Where("client_id = ?", *f.ClientID)
		}
		if f.Status != nil {
			q = q.Where("status = ?", *f.Status)
		}
		if f.EmailSent != nil {
			q = q.Where("email_sent = ?", *f.EmailSent)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count: %v", ErrQuery, err)
	}

	var invoices []models.Invoice
	err := base().Preload("Client").
		Order("created_at DESC").
		Limit(ListPageSize).
		Offset((page - 1) * ListPageSize).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list invoices: %v", ErrQuery, err)
	}
	return invoices, total, nil
}

// TaskFilter narrows the pre-invoice task query. All fields are optional and
// combine with AND. From and To are inclusive calendar dates.
type TaskFilter struct {
	ClientID *uint
	Status   *string
	From     *time.Time
	To       *time.Time
}

// TaskCandidates returns the tasks matching the filter, newest first. Callers
// treat a failure as "show nothing", not as a hard error.
func (s *InvoiceService) TaskCandidates(f TaskFilter) ([]models.Task, error) {
	q := s.db.Model(&models.Task{})
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.Truncate(24*time.Hour))
	}
	if f.To != nil {
		// inclusive upper bound on the calendar date
		q = q.Where("created_at < ?", f.To.Truncate(24*time.Hour).AddDate(0, 0, 1))
	}

	var tasks []models.Task
	if err := q.Preload("Client").Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: task candidates: %v", ErrQuery, err)
	}
	return tasks, nil
}

// Preview holds everything the preview page renders. Nothing is persisted;
// the number shown is freshly drawn and will differ from the one a later
// Generate call assigns.
type Preview struct {
	Number   string
	User     models.User
	Tasks    []models.Task
	Discount Discount
	Total    float64
}

// BuildPreview resolves the selected tasks and assembles a preview for the
// acting user. No side effects.
func (s *InvoiceService) BuildPreview(userID uint, taskIDs []uint, rawDiscount, rawKind string) (*Preview, error) {
	user, tasks, err := s.resolveUserAndTasks(userID, taskIDs)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Number:   NewInvoiceNumber(),
		User:     user,
		Tasks:    tasks,
		Discount: ResolveDiscount(rawDiscount, rawKind),
		Total:    sumPrices(tasks),
	}, nil
}

// Generate renders the invoice PDF, stores it, and creates the invoice
// record, in that order. A failure partway leaves whatever earlier steps
// already wrote: a stored PDF can exist without a row. That gap is
// deliberate, matching how the workflow has always behaved.
//
// The invoice's client is the client of the first resolved task; batches
// spanning multiple clients are caller error and are not detected.
func (s *InvoiceService) Generate(ctx context.Context, userID uint, taskIDs []uint, rawDiscount, rawKind string) (*models.Invoice, error) {
	user, tasks, err := s.resolveUserAndTasks(userID, taskIDs)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no tasks resolved for ids %v", ErrQuery, taskIDs)
	}

	discount := ResolveDiscount(rawDiscount, rawKind)
	number := NewInvoiceNumber()
	total := sumPrices(tasks)

	pdfBytes, err := s.renderer.Render(buildDocument(number, user, tasks, discount, total))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	filename := number + ".pdf"
	if err := s.files.Put(ctx, storage.InvoicePath(filename), pdfBytes); err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", ErrStorage, filename, err)
	}

	invoice := models.NewInvoice(number, tasks[0].ClientID, userID, total, filename)
	if err := s.db.Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	s.log.Infow("invoice generated", "number", number, "user_id", userID, "amount", total, "tasks", len(tasks))
	return &invoice, nil
}

// TogglePaid flips the payment status between paid and unpaid. Applying it
// twice restores the original state.
func (s *InvoiceService) TogglePaid(invoice *models.Invoice) error {
	next := invoice.ToggledStatus()
	if err := s.db.Model(invoice).Update("status", next).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	invoice.Status = next
	return nil
}

// Delete removes the stored PDF, then the invoice row. The two stores are
// not coupled: a file-delete failure is logged and does not stop the row
// delete, so an orphaned file is possible.
func (s *InvoiceService) Delete(ctx context.Context, invoice *models.Invoice) error {
	if err := s.files.Delete(ctx, storage.InvoicePath(invoice.Filename)); err != nil {
		s.log.Warnw("invoice pdf delete failed", "number", invoice.Number, "filename", invoice.Filename, "error", err)
	}
	if err := s.db.Delete(invoice).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// SendEmail mails the stored PDF to the invoice's client and marks the
// invoice as sent. "Sent" records that dispatch was attempted; the mail
// subsystem may queue the actual delivery. The flag stays untouched when
// dispatch fails.
func (s *InvoiceService) SendEmail(ctx context.Context, userID uint, invoice *models.Invoice) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("%w: load user %d: %v", ErrQuery, userID, err)
	}
	var client models.Client
	if err := s.db.First(&client, invoice.ClientID).Error; err != nil {
		return fmt.Errorf("%w: load client %d: %v", ErrQuery, invoice.ClientID, err)
	}

	pdfBytes, err := s.files.Get(ctx, storage.InvoicePath(invoice.Filename))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrStorage, invoice.Filename, err)
	}

	msg := mailer.Message{
		To:      client.Email,
		Subject: fmt.Sprintf("Invoice %s from %s", invoice.Number, user.Name),
		Text: fmt.Sprintf("Hello %s,\n\nPlease find attached invoice %s for %.2f.\n\nRegards,\n%s",
			client.Name, invoice.Number, invoice.Amount, user.Name),
		Attachments: []mailer.Attachment{{Filename: invoice.Filename, Content: pdfBytes}},
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMail, err)
	}

	if err := s.db.Model(invoice).Update("email_sent", models.EmailSent).Error; err != nil {
		return fmt.Errorf("%w: flag update: %v", ErrMail, err)
	}
	invoice.EmailSent = models.EmailSent

	s.log.Infow("invoice emailed", "number", invoice.Number, "to", client.Email)
	return nil
}

// resolveUserAndTasks loads the acting user and the selected tasks with their
// clients preloaded.
func (s *InvoiceService) resolveUserAndTasks(userID uint, taskIDs []uint) (models.User, []models.Task, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return models.User{}, nil, fmt.Errorf("%w: load user %d: %v", ErrQuery, userID, err)
	}
	var tasks []models.Task
	if err := s.db.Where("id IN ?", taskIDs).Preload("Client").Find(&tasks).Error; err != nil {
		return models.User{}, nil, fmt.Errorf("%w: load tasks: %v", ErrQuery, err)
	}
	return user, tasks, nil
}

func sumPrices(tasks []models.Task) float64 {
	var total float64
	for _, t := range tasks {
		total += t.Price
	}
	return total
}

func buildDocument(number string, user models.User, tasks []models.Task, discount Discount, total float64) pdf.Document {
	doc := pdf.Document{
		Number:       number,
		UserName:     user.Name,
		UserEmail:    user.Email,
		Discount:     discount.Amount,
		DiscountKind: discount.Kind,
		Total:        total,
	}
	if len(tasks) > 0 {
		doc.ClientName = tasks[0].Client.Name
	}
	for _, t := range tasks {
		doc.Lines = append(doc.Lines, pdf.Line{
			Title:  t.Title,
			Status: t.Status,
			Date:   t.CreatedAt.Format("2006-01-02"),
			Price:  t.Price,
		})
	}
	return doc
}
