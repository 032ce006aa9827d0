package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/email"
	"github.com/receiptly/receiptly-api/pkg/pdf"
	"github.com/receiptly/receiptly-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []email.ReceiptEmail
	err  error
}

func (m *fakeMailer) SendReceipt(msg email.ReceiptEmail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingPrinter struct {
	data []byte
}

func (p *recordingPrinter) Print(ctx context.Context, data []byte) error {
	p.data = append([]byte(nil), data...)
	return nil
}
func (p *recordingPrinter) Close() error      { return nil }
func (p *recordingPrinter) IsConnected() bool { return true }

func newDelivery(f *fixture, mailer ReceiptMailer, p printer.Printer) *DeliveryService {
	return NewDeliveryService(f.store, f.receipts, f.audit, mailer, p, "network", 32, zap.NewNop())
}

func TestRenderPDF(t *testing.T) {
	f := newFixture(t)
	f.enableTax(t, 8.5)
	delivery := newDelivery(f, &fakeMailer{}, printer.NewNullPrinter())

	result, err := f.receipts.IssueReceipt(f.ctx, f.sale(t, 1085, 1000))
	require.NoError(t, err)

	data, receipt, err := delivery.RenderPDF(f.ctx, result.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, result.ReceiptNumber, receipt.ReceiptNumber)
}

func TestSendReceipt(t *testing.T) {
	f := newFixture(t)
	mailer := &fakeMailer{}
	delivery := newDelivery(f, mailer, printer.NewNullPrinter())

	input := f.donation(t, "Jane Doe", 42, 42)
	input.RecipientEmail = "jane@example.com"
	result, err := f.receipts.IssueReceipt(f.ctx, input)
	require.NoError(t, err)

	sent, err := delivery.SendReceipt(f.ctx, result.ID, "")
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusSent, sent.Status)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Acme Foundation", msg.OrganizationName)
	assert.Equal(t, "$42.00", msg.Total)
	assert.True(t, bytes.HasPrefix(msg.PDF, []byte("%PDF-")))

	_, err = delivery.SendReceipt(f.ctx, result.ID, "accounts@example.com")
	require.NoError(t, err)
	assert.Equal(t, "accounts@example.com", mailer.sent[1].To)

	logs, err := f.audit.List(f.ctx, entity.AuditActionSendReceipt, firstPage())
	require.NoError(t, err)
	assert.Len(t, logs.Items, 2)
}

func TestSendReceiptRejections(t *testing.T) {
	f := newFixture(t)
	mailer := &fakeMailer{}
	delivery := newDelivery(f, mailer, printer.NewNullPrinter())

	result, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "No Email", 10, 10))
	require.NoError(t, err)

	_, err = delivery.SendReceipt(f.ctx, result.ID, "")
	assert.True(t, apperror.IsValidation(err))

	_, err = f.receipts.VoidReceipt(f.ctx, result.ID, "")
	require.NoError(t, err)
	_, err = delivery.SendReceipt(f.ctx, result.ID, "someone@example.com")
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, mailer.sent)
}

func TestSendReceiptMailerFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	delivery := newDelivery(f, &fakeMailer{err: errors.New("connection refused")}, printer.NewNullPrinter())

	input := f.donation(t, "Jane Doe", 10, 10)
	input.RecipientEmail = "jane@example.com"
	result, err := f.receipts.IssueReceipt(f.ctx, input)
	require.NoError(t, err)

	_, err = delivery.SendReceipt(f.ctx, result.ID, "")
	require.Error(t, err)
	assert.Equal(t, 502, apperror.GetAppError(err).Code)

	receipt, err := f.receipts.GetReceipt(f.ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusDraft, receipt.Status)
}

func TestPrintReceipt(t *testing.T) {
	f := newFixture(t)
	p := &recordingPrinter{}
	delivery := newDelivery(f, &fakeMailer{}, p)

	result, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 800, 500, 300))
	require.NoError(t, err)

	data, err := delivery.PrintReceipt(f.ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, data, p.data)
	assert.Contains(t, string(data), "Acme Foundation")
	assert.Contains(t, string(data), result.ReceiptNumber)
	assert.Contains(t, string(data), "$800.00")

	status := delivery.GetPrinterStatus()
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
}

func TestFormatThermalReceiptVoided(t *testing.T) {
	data := FormatThermalReceipt(pdf.ReceiptDocument{
		OrganizationName: "Acme",
		ReceiptNumber:    "DON-2024-0001",
		ReceiptType:      "Donation",
		Total:            "$1.00",
		Voided:           true,
		Lines:            []pdf.Line{{Name: "Gift", Amount: "$1.00"}},
	}, 32)

	assert.Contains(t, string(data), "*** VOID ***")
	assert.Contains(t, string(data), "Thank you!")
}
