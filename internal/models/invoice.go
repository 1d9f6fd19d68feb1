package models

import "time"

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// EmailStatus records whether email dispatch was attempted for an invoice.
// "yes" means dispatch was handed to the mail subsystem, not that delivery
// was confirmed.
type EmailStatus string

const (
	EmailNotSent EmailStatus = "no"
	EmailSent    EmailStatus = "yes"
)

// Invoice is a generated billing document aggregating tasks for a client.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is the human-readable invoice number (INVO_<n>). It is random
	// and not guaranteed unique, matching how numbers have always been issued.
	Number string `gorm:"size:50;index;not null" json:"number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Status InvoiceStatus `gorm:"size:20;not null" json:"status"`

	// Amount is the sum of the included tasks' prices at generation time.
	// It is fixed at creation and never recomputed; the discount shown on
	// the rendered document is presentational only.
	Amount float64 `gorm:"not null" json:"amount"`

	// Filename of the rendered PDF in the file store, under invoices/.
	Filename string `gorm:"size:255;not null" json:"filename"`

	EmailSent EmailStatus `gorm:"size:10;not null" json:"email_sent"`
}

// NewInvoice builds an invoice record from exactly the fields the generation
// step is allowed to set. There is no other way to assemble one, so a new
// field can only reach the table by being added here.
func NewInvoice(number string, clientID, userID uint, amount float64, filename string) Invoice {
	return Invoice{
		Number:    number,
		ClientID:  clientID,
		UserID:    userID,
		Status:    InvoiceStatusUnpaid,
		Amount:    amount,
		Filename:  filename,
		EmailSent: EmailNotSent,
	}
}

// IsPaid reports whether the invoice has been marked paid.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// ToggledStatus returns the opposite payment status.
func (i *Invoice) ToggledStatus() InvoiceStatus {
	if i.Status == InvoiceStatusUnpaid {
		return InvoiceStatusPaid
	}
	return InvoiceStatusUnpaid
}
