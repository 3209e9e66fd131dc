// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-gateway/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	tmpl *template.Template
}

// NewService creates a new PDF service
func NewService() *Service {
	return &Service{
		tmpl: template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

// RenderReceipt renders an order receipt as a PDF document
func (s *Service) RenderReceipt(o *order.Order) ([]byte, error) {
	data := receiptData{
		ReceiptNumber: fmt.Sprintf("RCT-%d", o.ID),
		IssuedAt:      time.Now().Format("January 2, 2006"),
		Order:         o,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data receiptData) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// receiptData represents the data passed to the receipt template
type receiptData struct {
	ReceiptNumber string
	IssuedAt      string
	Order         *order.Order
}

// Receipt HTML template. Prices render through decimal.Decimal's String
// method, so no numeric formatting happens in the template.
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .receipt-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .customer-info {
            margin-bottom: 30px;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-paid {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-unpaid {
            background-color: #fef3c7;
            color: #92400e;
        }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <div class="receipt-title">RECEIPT</div>
            <p><strong>Receipt #:</strong> {{.ReceiptNumber}}</p>
            <p><strong>Issued:</strong> {{.IssuedAt}}</p>
        </div>
        <div style="text-align: right;">
            <p><strong>Order #:</strong> {{.Order.ID}}</p>
            <p><strong>Order Date:</strong> {{.Order.CreatedAt.Format "January 2, 2006"}}</p>
            <p>
                <span class="status-badge {{if .Order.IsPaid}}status-paid{{else}}status-unpaid{{end}}">
                    {{.Order.Status}}
                </span>
            </p>
        </div>
    </div>

    <div class="customer-info">
        <div class="section-title">Customer:</div>
        <p><strong>{{.Order.Customer.FirstName}} {{.Order.Customer.LastName}}</strong></p>
        <p>{{.Order.Customer.Address}}</p>
        <p>{{.Order.Customer.PostalCode}} {{.Order.Customer.City}}</p>
        <p>Email: {{.Order.Customer.Email}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.ProductName}}</strong></td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">${{.UnitPrice}}</td>
                <td class="total-col">${{.LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">${{.Order.TotalCost}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your order!</p>
    </div>
</body>
</html>
`
