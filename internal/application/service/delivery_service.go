package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/email"
	"github.com/receiptly/receiptly-api/pkg/money"
	"github.com/receiptly/receiptly-api/pkg/pdf"
	"github.com/receiptly/receiptly-api/pkg/printer"
	"go.uber.org/zap"
)

// ReceiptMailer delivers a rendered receipt by email
type ReceiptMailer interface {
	SendReceipt(msg email.ReceiptEmail) error
}

// DeliveryService renders receipts to PDF and thermal paper and emails them
type DeliveryService struct {
	store       repository.Store
	receipts    *ReceiptService
	audit       *AuditService
	mailer      ReceiptMailer
	printer     printer.Printer
	printerType string
	charWidth   int
	log         *zap.Logger
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	store repository.Store,
	receipts *ReceiptService,
	audit *AuditService,
	mailer ReceiptMailer,
	p printer.Printer,
	printerType string,
	charWidth int,
	log *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		store:       store,
		receipts:    receipts,
		audit:       audit,
		mailer:      mailer,
		printer:     p,
		printerType: printerType,
		charWidth:   charWidth,
		log:         log,
	}
}

// receiptView is a receipt with the organization data needed to render it
type receiptView struct {
	receipt  *entity.Receipt
	org      *entity.Organization
	settings *entity.OrganizationSettings
}

func (s *DeliveryService) load(ctx context.Context, id uuid.UUID) (*receiptView, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	repos := s.store.Repos()

	receipt, err := repos.Receipts.GetWithDetails(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}

	org, err := repos.Organizations.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperror.NewNotFoundError("Organization")
	}

	settings, err := repos.Settings.GetByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = entity.DefaultOrganizationSettings(orgID)
	}

	return &receiptView{receipt: receipt, org: org, settings: settings}, nil
}

func (v *receiptView) amount(cents int64) string {
	symbol := v.receipt.CurrencySymbol
	if symbol == "" {
		return money.Format(cents) + " " + v.receipt.Currency
	}
	return money.FormatWithSymbol(symbol, cents)
}

func (v *receiptView) typeName() string {
	if v.receipt.ReceiptType != nil {
		return v.receipt.ReceiptType.Name
	}
	return "Receipt"
}

func (v *receiptView) taxLabel() string {
	r := v.receipt
	name := "Tax"
	if r.TaxName != nil && *r.TaxName != "" {
		name = *r.TaxName
	}
	if r.TaxPercentage != nil {
		return fmt.Sprintf("%s (%s%%)", name, strconv.FormatFloat(*r.TaxPercentage, 'f', -1, 64))
	}
	return name
}

func (v *receiptView) document() pdf.ReceiptDocument {
	r := v.receipt
	doc := pdf.ReceiptDocument{
		OrganizationName: v.org.Name,
		ReceiptNumber:    r.ReceiptNumber,
		ReceiptType:      v.typeName(),
		Date:             r.Date.Format("2006-01-02"),
		Status:           r.Status.String(),
		RecipientName:    r.RecipientName,
		RecipientEmail:   r.RecipientEmail,
		RecipientPhone:   r.RecipientPhone,
		RecipientAddress: r.RecipientAddress,
		Total:            v.amount(r.TotalAmount),
		Notes:            r.Notes,
		Footer:           v.settings.ReceiptFooter,
		Voided:           r.IsVoided(),
		VoidReason:       r.VoidReason,
	}

	if r.SubtotalAmount != nil {
		doc.Subtotal = v.amount(*r.SubtotalAmount)
	}
	if r.TaxAmount != nil && *r.TaxAmount > 0 {
		doc.TaxLabel = v.taxLabel()
		doc.Tax = v.amount(*r.TaxAmount)
	}

	for _, item := range r.Items {
		line := pdf.Line{Name: item.Name, Amount: v.amount(item.Amount)}
		if item.ItemCategory != nil {
			line.Category = item.ItemCategory.Name
		}
		if item.Quantity != nil {
			line.Quantity = strconv.FormatFloat(*item.Quantity, 'f', -1, 64)
		}
		if item.UnitPrice != nil {
			line.UnitPrice = v.amount(*item.UnitPrice)
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}

// RenderPDF renders the receipt as a PDF
func (s *DeliveryService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, *entity.Receipt, error) {
	view, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := pdf.RenderReceipt(view.document())
	if err != nil {
		return nil, nil, err
	}
	return data, view.receipt, nil
}

// SendReceipt emails the receipt PDF to the recipient, or to override when set.
// Draft receipts move to Sent; a viewed receipt keeps its status.
func (s *DeliveryService) SendReceipt(ctx context.Context, id uuid.UUID, override string) (*entity.Receipt, error) {
	view, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.receipt.IsVoided() {
		return nil, apperror.NewValidationMessage("voided receipts cannot be sent")
	}

	to := strings.TrimSpace(override)
	if to == "" {
		to = view.receipt.RecipientEmail
	}
	if to == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "email", Message: "receipt has no recipient email"}})
	}

	data, err := pdf.RenderReceipt(view.document())
	if err != nil {
		return nil, err
	}

	err = s.mailer.SendReceipt(email.ReceiptEmail{
		To:               to,
		RecipientName:    view.receipt.RecipientName,
		OrganizationName: view.org.Name,
		ReceiptNumber:    view.receipt.ReceiptNumber,
		Date:             view.receipt.Date.Format("2006-01-02"),
		Total:            view.amount(view.receipt.TotalAmount),
		Footer:           view.settings.ReceiptFooter,
		PDF:              data,
	})
	if err != nil {
		s.log.Error("receipt email failed",
			zap.String("receipt_id", id.String()),
			zap.Error(err),
		)
		if errors.Is(err, email.ErrNotConfigured) {
			return nil, apperror.NewAppError(503, "Email delivery is not configured")
		}
		return nil, apperror.NewAppError(502, "Failed to send receipt email")
	}

	receipt := view.receipt
	if receipt.Status != enum.ReceiptStatusViewed {
		receipt, err = s.receipts.MarkSent(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, s.store.Repos().AuditLogs, AuditEntry{
		OrganizationID: view.receipt.OrganizationID,
		Action:         entity.AuditActionSendReceipt,
		ResourceType:   "receipt",
		ResourceID:     id.String(),
		Details:        map[string]interface{}{"to": to},
	})
	return receipt, nil
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetPrinterStatus returns printer connection status.
func (s *DeliveryService) GetPrinterStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// PrintReceipt sends the receipt to the thermal printer and returns the ESC/POS bytes
func (s *DeliveryService) PrintReceipt(ctx context.Context, id uuid.UUID) ([]byte, error) {
	view, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	data := FormatThermalReceipt(view.document(), s.charWidth)
	if err := s.printer.Print(ctx, data); err != nil {
		s.log.Error("printer error", zap.String("receipt_id", id.String()), zap.Error(err))
		return data, apperror.NewAppError(502, fmt.Sprintf("Failed to print receipt: %v", err))
	}
	return data, nil
}

// FormatThermalReceipt lays out a receipt as ESC/POS bytes
func FormatThermalReceipt(r pdf.ReceiptDocument, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.OrganizationName).
		SetFontSize(printer.FontNormal).
		SetBold(false).
		Text(r.ReceiptType + " Receipt")

	if r.Voided {
		doc.SetBold(true).Text("*** VOID ***").SetBold(false)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Receipt:", r.ReceiptNumber).
		KeyValue("Date:", r.Date).
		KeyValue("To:", r.RecipientName).
		Separator('-')

	// Items
	for _, line := range r.Lines {
		label := line.Name
		if label == "" {
			label = line.Category
		}
		if line.Quantity != "" {
			label = line.Quantity + "x " + label
		}
		doc.ItemLine(label, line.Amount)
		if line.UnitPrice != "" {
			doc.TextF("  @ %s each", line.UnitPrice)
		}
	}

	doc.Separator('-')

	// Totals
	if r.Subtotal != "" {
		doc.KeyValue("Subtotal:", r.Subtotal)
	}
	if r.Tax != "" {
		doc.KeyValue(r.TaxLabel+":", r.Tax)
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", r.Total).
		SetBold(false).
		Separator('-')

	// Footer
	footer := r.Footer
	if footer == "" {
		footer = "Thank you!"
	}
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text(footer).
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
