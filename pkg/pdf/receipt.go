package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptItem is one printed line of a receipt. Amounts are preformatted.
type ReceiptItem struct {
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

// ReceiptToken is the counter token printed on the receipt.
type ReceiptToken struct {
	CounterNo int
	Token     int
}

// ReceiptData holds everything rendered on an invoice receipt.
type ReceiptData struct {
	BusinessName    string
	InvoiceNumber   string
	Date            string
	CustomerName    string
	MobileNumber    string
	PaymentMode     string
	ReferenceNumber string
	BilledBy        string
	Items           []ReceiptItem
	Tokens          []ReceiptToken
	Total           string
}

// GenerateReceipt renders the receipt as a PDF document.
func GenerateReceipt(data ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, data.BusinessName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Invoice: "+data.InvoiceNumber, props.Text{Size: 9}),
			text.New("Date: "+data.Date, props.Text{Size: 9, Top: 5}),
			text.New("Billed by: "+data.BilledBy, props.Text{Size: 9, Top: 10}),
		),
		col.New(6).Add(
			text.New(customerLine(data), props.Text{Size: 9, Align: align.Right}),
			text.New("Payment: "+paymentLine(data), props.Text{Size: 9, Top: 5, Align: align.Right}),
		),
	)

	m.AddRow(2, line.NewCol(12))

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(7,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(2, data.Total, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, tok := range data.Tokens {
		m.AddRow(9,
			text.NewCol(12, fmt.Sprintf("Counter %d  Token #%d", tok.CounterNo, tok.Token), props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Center,
			}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func customerLine(data ReceiptData) string {
	name := data.CustomerName
	if name == "" {
		name = "Walk-in customer"
	}
	if data.MobileNumber != "" {
		return name + " (" + data.MobileNumber + ")"
	}
	return name
}

func paymentLine(data ReceiptData) string {
	if data.ReferenceNumber != "" {
		return data.PaymentMode + " / " + data.ReferenceNumber
	}
	return data.PaymentMode
}
