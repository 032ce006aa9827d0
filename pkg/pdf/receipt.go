// Package pdf renders printable receipts.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
)

// Line is one rendered receipt line
type Line struct {
	Category  string
	Name      string
	Quantity  string
	UnitPrice string
	Amount    string
}

// ReceiptDocument carries pre-formatted values; amounts already include the currency symbol.
type ReceiptDocument struct {
	OrganizationName string
	ReceiptNumber    string
	ReceiptType      string
	Date             string
	Status           string
	RecipientName    string
	RecipientEmail   string
	RecipientPhone   string
	RecipientAddress string
	Lines            []Line
	Subtotal         string
	TaxLabel         string
	Tax              string
	Total            string
	Notes            string
	Footer           string
	Voided           bool
	VoidReason       string
}

// RenderReceipt lays out a single A4 receipt page and returns the PDF bytes
func RenderReceipt(doc ReceiptDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("Receipt %s", doc.ReceiptNumber), true)
	pdf.SetCreator(doc.OrganizationName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(180, 10, tr(doc.OrganizationName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(180, 6, tr(doc.ReceiptType+" Receipt"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if doc.Voided {
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont("Arial", "B", 14)
		voidText := "VOID"
		if doc.VoidReason != "" {
			voidText = "VOID - " + doc.VoidReason
		}
		pdf.CellFormat(180, 8, tr(voidText), "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	// Receipt details
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 7, tr("Receipt No: "+doc.ReceiptNumber), "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 7, tr("Date: "+doc.Date), "1", 1, "L", true, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(180, 7, "Received From", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, tr(doc.RecipientName), "", 1, "L", false, 0, "")
	for _, extra := range []string{doc.RecipientEmail, doc.RecipientPhone} {
		if extra != "" {
			pdf.CellFormat(180, 6, tr(extra), "", 1, "L", false, 0, "")
		}
	}
	if doc.RecipientAddress != "" {
		pdf.MultiCell(180, 6, tr(doc.RecipientAddress), "", "L", false)
	}
	pdf.Ln(4)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(45, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(45, 6, tr(clip(line.Category, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, tr(clip(line.Name, 32)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, line.Quantity, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, tr(line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tr(line.Amount), "1", 1, "R", false, 0, "")
	}

	// Totals
	if doc.Subtotal != "" {
		pdf.CellFormat(150, 6, "Subtotal", "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tr(doc.Subtotal), "1", 1, "R", false, 0, "")
	}
	if doc.Tax != "" {
		pdf.CellFormat(150, 6, tr(doc.TaxLabel), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tr(doc.Tax), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, tr(doc.Total), "1", 1, "R", true, 0, "")

	if doc.Notes != "" {
		pdf.Ln(5)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(180, 5, tr(doc.Notes), "", "L", false)
	}

	if doc.Footer != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(180, 5, tr(doc.Footer), "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render receipt %s: %w", doc.ReceiptNumber, err)
	}
	return buf.Bytes(), nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
