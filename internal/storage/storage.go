// Package storage persists rendered invoice PDFs. Paths are relative keys
// namespaced by the caller (the workflow uses invoices/<number>.pdf); each
// implementation maps them onto its own backend.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists at the given path.
var ErrNotFound = errors.New("storage: object not found")

// Store is the file store the invoice workflow writes to and deletes from.
// A put and the matching invoice row are two separate stores with no
// transaction spanning them; callers own that gap.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// InvoicePath returns the store key for an invoice's PDF.
func InvoicePath(filename string) string {
	return "invoices/" + filename
}
