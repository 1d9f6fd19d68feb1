package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sahasajib/invo/internal/logger"
	"github.com/sahasajib/invo/internal/mailer"
	"github.com/sahasajib/invo/internal/models"
	"github.com/sahasajib/invo/internal/pdf"
	"github.com/sahasajib/invo/internal/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Client{}, &models.Task{}, &models.Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type failRenderer struct{}

func (failRenderer) Render(pdf.Document) ([]byte, error) {
	return nil, errors.New("boom")
}

func newTestService(t *testing.T, db *gorm.DB) (*InvoiceService, storage.Store, *fakeMailer) {
	t.Helper()
	store := storage.NewLocal(t.TempDir())
	mail := &fakeMailer{}
	svc := NewInvoiceService(db, pdf.NewGenerator(), store, mail, logger.Nop())
	return svc, store, mail
}

func seedUserAndClient(t *testing.T, db *gorm.DB, email string) (models.User, models.Client) {
	t.Helper()
	user := models.User{Email: email, Password: "x", Name: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	client := models.Client{UserID: user.ID, Name: "ClientCo", Email: "billing@clientco.test"}
	require.NoError(t, db.Create(&client).Error)
	return user, client
}

func seedTask(t *testing.T, db *gorm.DB, clientID uint, price float64, status string, createdAt time.Time) models.Task {
	t.Helper()
	task := models.Task{ClientID: clientID, Title: "work", Price: price, Status: status, CreatedAt: createdAt}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestListScopedToOwnerAndFiltered(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)

	user, client := seedUserAndClient(t, db, "owner@test")
	other, otherClient := seedUserAndClient(t, db, "other@test")

	mine := models.NewInvoice("INVO_1001", client.ID, user.ID, 100, "INVO_1001.pdf")
	require.NoError(t, db.Create(&mine).Error)

	paid := models.NewInvoice("INVO_1002", client.ID, user.ID, 200, "INVO_1002.pdf")
	paid.Status = models.InvoiceStatusPaid
	paid.EmailSent = models.EmailSent
	require.NoError(t, db.Create(&paid).Error)

	theirs := models.NewInvoice("INVO_2001", otherClient.ID, other.ID, 300, "INVO_2001.pdf")
	require.NoError(t, db.Create(&theirs).Error)

	// no filters: everything the user owns, nothing anyone else owns
	invoices, total, err := svc.List(user.ID, ListFilter{}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, inv := range invoices {
		assert.Equal(t, user.ID, inv.UserID)
	}

	// status filter
	status := models.InvoiceStatusPaid
	invoices, _, err = svc.List(user.ID, ListFilter{Status: &status}, 1)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INVO_1002", invoices[0].Number)

	// emailsent filter
	sent := models.EmailNotSent
	invoices, _, err = svc.List(user.ID, ListFilter{EmailSent: &sent}, 1)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INVO_1001", invoices[0].Number)

	// combined filters are AND: paid + not sent matches nothing
	invoices, total, err = svc.List(user.ID, ListFilter{Status: &status, EmailSent: &sent}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, invoices)

	// client filter preloads the client
	invoices, _, err = svc.List(user.ID, ListFilter{ClientID: &client.ID}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, invoices)
	require.NotNil(t, invoices[0].Client)
	assert.Equal(t, "ClientCo", invoices[0].Client.Name)
}

func TestListPageSize(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "pager@test")

	for i := 0; i < 12; i++ {
		inv := models.NewInvoice(fmt.Sprintf("INVO_%d", 300+i), client.ID, user.ID, 10, "x.pdf")
		inv.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
		require.NoError(t, db.Create(&inv).Error)
	}

	invoices, total, err := svc.List(user.ID, ListFilter{}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Len(t, invoices, ListPageSize)
	// newest first
	assert.Equal(t, "INVO_311", invoices[0].Number)

	invoices, _, err = svc.List(user.ID, ListFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
}

func TestTaskCandidatesFiltersAreAnd(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	_, client := seedUserAndClient(t, db, "tasks@test")
	_, otherClient := seedUserAndClient(t, db, "tasks2@test")

	march10 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	march20 := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	a := seedTask(t, db, client.ID, 10, models.TaskStatusCompleted, march10)
	seedTask(t, db, client.ID, 20, models.TaskStatusPending, march10)
	seedTask(t, db, otherClient.ID, 30, models.TaskStatusCompleted, march10)
	b := seedTask(t, db, client.ID, 40, models.TaskStatusCompleted, march20)

	// no filters returns everything
	tasks, err := svc.TaskCandidates(TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	// client + status
	completed := models.TaskStatusCompleted
	tasks, err = svc.TaskCandidates(TaskFilter{ClientID: &client.ID, Status: &completed})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// inclusive date bounds narrow further
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tasks, err = svc.TaskCandidates(TaskFilter{ClientID: &client.ID, Status: &completed, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)

	from = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	tasks, err = svc.TaskCandidates(TaskFilter{ClientID: &client.ID, From: &from})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, b.ID, tasks[0].ID)

	// an unreachable combination yields an empty set, not a failure
	pending := models.TaskStatusPending
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks, err = svc.TaskCandidates(TaskFilter{Status: &pending, From: &future})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGenerateScenario(t *testing.T) {
	db := setupTestDB(t)
	svc, store, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "gen@test")

	now := time.Now()
	t1 := seedTask(t, db, client.ID, 10.00, models.TaskStatusCompleted, now)
	t2 := seedTask(t, db, client.ID, 20.50, models.TaskStatusCompleted, now)
	t3 := seedTask(t, db, client.ID, 5.00, models.TaskStatusCompleted, now)

	invoice, err := svc.Generate(context.Background(), user.ID, []uint{t1.ID, t2.ID, t3.ID}, "", "")
	require.NoError(t, err)

	assert.Equal(t, 35.50, invoice.Amount)
	assert.Equal(t, client.ID, invoice.ClientID)
	assert.Equal(t, user.ID, invoice.UserID)
	assert.Equal(t, models.InvoiceStatusUnpaid, invoice.Status)
	assert.Equal(t, models.EmailNotSent, invoice.EmailSent)
	assert.Equal(t, invoice.Number+".pdf", invoice.Filename)
	assert.Regexp(t, `^INVO_\d+$`, invoice.Number)

	// exactly one PDF written under invoices/
	data, err := store.Get(context.Background(), storage.InvoicePath(invoice.Filename))
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGenerateDiscountIsPresentationalOnly(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "disc@test")
	task := seedTask(t, db, client.ID, 100, models.TaskStatusCompleted, time.Now())

	invoice, err := svc.Generate(context.Background(), user.ID, []uint{task.ID}, "25", "percent")
	require.NoError(t, err)
	assert.Equal(t, 100.0, invoice.Amount)
}

func TestGenerateNoTasks(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	user, _ := seedUserAndClient(t, db, "empty@test")

	_, err := svc.Generate(context.Background(), user.ID, []uint{9999}, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuery)
}

func TestGenerateRenderFailureWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewLocal(t.TempDir())
	svc := NewInvoiceService(db, failRenderer{}, store, &fakeMailer{}, logger.Nop())
	user, client := seedUserAndClient(t, db, "fail@test")
	task := seedTask(t, db, client.ID, 10, models.TaskStatusCompleted, time.Now())

	_, err := svc.Generate(context.Background(), user.ID, []uint{task.ID}, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestBuildPreviewHasNoSideEffects(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "prev@test")
	task := seedTask(t, db, client.ID, 42, models.TaskStatusPending, time.Now())

	preview, err := svc.BuildPreview(user.ID, []uint{task.ID}, "5", "flat")
	require.NoError(t, err)
	assert.Regexp(t, `^INVO_\d+$`, preview.Number)
	assert.Equal(t, 42.0, preview.Total)
	assert.Equal(t, Discount{Amount: 5, Kind: "flat"}, preview.Discount)
	require.Len(t, preview.Tasks, 1)

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestTogglePaidTwiceRestoresStatus(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "toggle@test")

	invoice := models.NewInvoice("INVO_555", client.ID, user.ID, 10, "INVO_555.pdf")
	require.NoError(t, db.Create(&invoice).Error)

	require.NoError(t, svc.TogglePaid(&invoice))
	assert.Equal(t, models.InvoiceStatusPaid, invoice.Status)

	var fromDB models.Invoice
	require.NoError(t, db.First(&fromDB, invoice.ID).Error)
	assert.Equal(t, models.InvoiceStatusPaid, fromDB.Status)

	require.NoError(t, svc.TogglePaid(&invoice))
	assert.Equal(t, models.InvoiceStatusUnpaid, invoice.Status)
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	db := setupTestDB(t)
	svc, store, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "del@test")

	task := seedTask(t, db, client.ID, 10, models.TaskStatusCompleted, time.Now())
	invoice, err := svc.Generate(context.Background(), user.ID, []uint{task.ID}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), invoice))

	invoices, total, err := svc.List(user.ID, ListFilter{}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, invoices)

	_, err = store.Get(context.Background(), storage.InvoicePath(invoice.Filename))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteProceedsWhenFileAlreadyGone(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "del2@test")

	// record with no backing file: the missing file is logged, the row still goes
	invoice := models.NewInvoice("INVO_777", client.ID, user.ID, 10, "INVO_777.pdf")
	require.NoError(t, db.Create(&invoice).Error)

	require.NoError(t, svc.Delete(context.Background(), &invoice))

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSendEmailSetsFlagOnSuccessOnly(t *testing.T) {
	db := setupTestDB(t)
	svc, _, mail := newTestService(t, db)
	user, client := seedUserAndClient(t, db, "mail@test")

	task := seedTask(t, db, client.ID, 10, models.TaskStatusCompleted, time.Now())
	invoice, err := svc.Generate(context.Background(), user.ID, []uint{task.ID}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.SendEmail(context.Background(), user.ID, invoice))
	assert.Equal(t, models.EmailSent, invoice.EmailSent)

	require.Len(t, mail.sent, 1)
	msg := mail.sent[0]
	assert.Equal(t, client.Email, msg.To)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, invoice.Filename, msg.Attachments[0].Filename)
	assert.NotEmpty(t, msg.Attachments[0].Content)

	var fromDB models.Invoice
	require.NoError(t, db.First(&fromDB, invoice.ID).Error)
	assert.Equal(t, models.EmailSent, fromDB.EmailSent)
}

func TestSendEmailFailureLeavesFlagUnchanged(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewLocal(t.TempDir())
	mail := &fakeMailer{err: errors.New("smtp down")}
	svc := NewInvoiceService(db, pdf.NewGenerator(), store, mail, logger.Nop())
	user, client := seedUserAndClient(t, db, "mailfail@test")

	task := seedTask(t, db, client.ID, 10, models.TaskStatusCompleted, time.Now())
	invoice, err := svc.Generate(context.Background(), user.ID, []uint{task.ID}, "", "")
	require.NoError(t, err)

	err = svc.SendEmail(context.Background(), user.ID, invoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMail)

	var fromDB models.Invoice
	require.NoError(t, db.First(&fromDB, invoice.ID).Error)
	assert.Equal(t, models.EmailNotSent, fromDB.EmailSent)
}
