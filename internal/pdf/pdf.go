// Package pdf renders invoice documents with gofpdf.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Line is one billed task on the document.
type Line struct {
	Title  string
	Status string
	Date   string
	Price  float64
}

// Document is the data bag handed to the renderer: invoice number, the acting
// user, the task lines, and the presentational discount fields. The discount
// is printed but never subtracted from the persisted amount.
type Document struct {
	Number       string
	UserName     string
	UserEmail    string
	ClientName   string
	Lines        []Line
	Discount     float64
	DiscountKind string
	Total        float64
}

// Generator renders documents to PDF bytes.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Render produces an A4 invoice PDF for the document.
func (g *Generator) Render(doc Document) ([]byte, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	p.SetFont("Arial", "B", 18)
	p.Cell(0, 12, "Invoice "+doc.Number)
	p.Ln(14)

	p.SetFont("Arial", "", 11)
	p.Cell(0, 6, "Billed by: "+doc.UserName+" <"+doc.UserEmail+">")
	p.Ln(6)
	if doc.ClientName != "" {
		p.Cell(0, 6, "Billed to: "+doc.ClientName)
		p.Ln(6)
	}
	p.Ln(4)

	// Task table
	p.SetFont("Arial", "B", 11)
	p.CellFormat(80, 8, "Task", "1", 0, "L", false, 0, "")
	p.CellFormat(35, 8, "Status", "1", 0, "L", false, 0, "")
	p.CellFormat(35, 8, "Date", "1", 0, "L", false, 0, "")
	p.CellFormat(30, 8, "Price", "1", 1, "R", false, 0, "")

	p.SetFont("Arial", "", 11)
	for _, line := range doc.Lines {
		p.CellFormat(80, 8, line.Title, "1", 0, "L", false, 0, "")
		p.CellFormat(35, 8, line.Status, "1", 0, "L", false, 0, "")
		p.CellFormat(35, 8, line.Date, "1", 0, "L", false, 0, "")
		p.CellFormat(30, 8, fmt.Sprintf("%.2f", line.Price), "1", 1, "R", false, 0, "")
	}

	p.Ln(4)
	p.SetFont("Arial", "B", 12)
	p.CellFormat(150, 8, "Total", "", 0, "R", false, 0, "")
	p.CellFormat(30, 8, fmt.Sprintf("%.2f", doc.Total), "", 1, "R", false, 0, "")

	if doc.DiscountKind != "" {
		p.SetFont("Arial", "", 11)
		p.CellFormat(150, 8, "Discount ("+doc.DiscountKind+")", "", 0, "R", false, 0, "")
		p.CellFormat(30, 8, fmt.Sprintf("%.2f", doc.Discount), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
