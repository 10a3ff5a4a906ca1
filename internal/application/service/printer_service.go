package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pdf"
	"github.com/sangkips/pos-api/pkg/printer"
	"go.uber.org/zap"
)

// PrinterService renders receipts and prints counter tickets.
type PrinterService struct {
	printer      printer.Printer
	connection   string
	invoices     *InvoiceService
	settings     *PaymentSettingsService
	businessName string
	loc          *time.Location
	log          *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	connection string,
	invoices *InvoiceService,
	settings *PaymentSettingsService,
	businessName string,
	loc *time.Location,
	log *zap.Logger,
) *PrinterService {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &PrinterService{
		printer:      p,
		connection:   connection,
		invoices:     invoices,
		settings:     settings,
		businessName: businessName,
		loc:          loc,
		log:          log,
	}
}

// PrinterStatus reports the hardware printer connection.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Connection string `json:"connection"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.connection != "none" && s.connection != "" && s.printer != nil,
		Connected:  s.printer.IsConnected(),
		Connection: s.connection,
	}
}

// PrintResult tells the caller what was sent to the printer.
type PrintResult struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Tickets       int    `json:"tickets"`
	Copies        int    `json:"copies"`
}

// PrintCounterTickets prints one ticket per counter of the invoice with the
// token number in double size, using the default printer's paper width.
func (s *PrinterService) PrintCounterTickets(ctx context.Context, actor Actor, invoiceID uuid.UUID) (*PrintResult, error) {
	if !s.GetStatus().Configured {
		return nil, apperror.NewBadRequestError("No printer configured")
	}

	invoice, err := s.invoices.GetInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}

	width, copies := printer.Width80mm, 1
	setting, err := s.settings.DefaultPrinter(ctx)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		if setting.Type == enum.PrinterThermal58mm {
			width = printer.Width58mm
		}
		if setting.Copies > 0 {
			copies = setting.Copies
		}
	}

	data := FormatCounterTickets(invoice, width, invoice.CreatedAt.In(s.loc))
	for i := 0; i < copies; i++ {
		if err := s.printer.Print(data); err != nil {
			s.log.Error("printer error",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			return nil, apperror.NewInternalError("failed to print counter tickets", err)
		}
	}

	return &PrintResult{
		InvoiceNumber: invoice.InvoiceNumber,
		Tickets:       len(invoice.CounterWiseData),
		Copies:        copies,
	}, nil
}

// FormatCounterTickets converts the counter groups of an invoice into ESC/POS
// bytes, one cut ticket per counter.
func FormatCounterTickets(invoice *entity.Invoice, width int, at time.Time) []byte {
	doc := printer.NewDocument(width)

	for _, group := range invoice.CounterWiseData {
		doc.SetAlign(printer.AlignCenter).
			SetBold(true).
			TextF("COUNTER %d", group.CounterNo).
			SetFontSize(printer.FontDouble).
			TextF("TOKEN %d", group.CounterTokenNumber).
			SetFontSize(printer.FontNormal).
			SetBold(false).
			SetAlign(printer.AlignLeft).
			Separator('-').
			KeyValue("Invoice:", invoice.InvoiceNumber).
			KeyValue("Date:", at.Format("2006-01-02 15:04")).
			Separator('-')

		for _, item := range group.Items {
			doc.ItemLine(item.TotalQuantity, item.ProductName, item.Total.StringFixed(2))
			for _, v := range item.Variations {
				doc.TextF("  %s x%d", v.Name, v.Quantity)
			}
		}

		doc.Separator('-').
			FeedLines(3).
			PartialCut()
	}

	return doc.Bytes()
}

// Receipt renders the PDF receipt of an invoice.
func (s *PrinterService) Receipt(ctx context.Context, actor Actor, invoiceID uuid.UUID) ([]byte, string, error) {
	invoice, err := s.invoices.GetInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, "", err
	}

	businessName := s.businessName
	if settings, err := s.settings.GetSettings(ctx); err == nil {
		if acc := settings.DefaultUpiAccount(); acc != nil && acc.BusinessName != "" {
			businessName = acc.BusinessName
		}
	}

	body, err := pdf.GenerateReceipt(buildReceiptData(invoice, businessName, s.loc))
	if err != nil {
		s.log.Error("receipt rendering failed", zap.String("invoice_number", invoice.InvoiceNumber), zap.Error(err))
		return nil, "", apperror.NewInternalError("failed to render receipt", err)
	}
	return body, fmt.Sprintf("receipt-%s.pdf", invoice.InvoiceNumber), nil
}

func buildReceiptData(invoice *entity.Invoice, businessName string, loc *time.Location) pdf.ReceiptData {
	data := pdf.ReceiptData{
		BusinessName:    businessName,
		InvoiceNumber:   invoice.InvoiceNumber,
		Date:            invoice.CreatedAt.In(loc).Format("02 Jan 2006 15:04"),
		CustomerName:    invoice.CustomerName,
		MobileNumber:    invoice.MobileNumber,
		PaymentMode:     string(invoice.PaymentMode),
		ReferenceNumber: invoice.ReferenceNumber,
		Total:           invoice.TotalAmount.StringFixed(2),
	}
	if invoice.Creator != nil {
		data.BilledBy = invoice.Creator.Name
	}

	for _, item := range invoice.CartItems {
		if len(item.Variations) == 0 {
			data.Items = append(data.Items, pdf.ReceiptItem{
				Description: item.ProductName,
				Qty:         item.TotalQuantity,
				UnitPrice:   item.UnitPrice.StringFixed(2),
				Amount:      item.Total.StringFixed(2),
			})
			continue
		}
		for _, v := range item.Variations {
			data.Items = append(data.Items, pdf.ReceiptItem{
				Description: item.ProductName + " (" + v.Name + ")",
				Qty:         v.Quantity,
				UnitPrice:   v.Price.StringFixed(2),
				Amount:      v.Total.StringFixed(2),
			})
		}
	}

	for _, g := range invoice.CounterWiseData {
		data.Tokens = append(data.Tokens, pdf.ReceiptToken{CounterNo: g.CounterNo, Token: g.CounterTokenNumber})
	}
	return data
}
