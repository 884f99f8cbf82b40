package service

import (
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	invoiceDomain "github.com/ridloal/e-commerce-go-order-core/internal/invoice/domain"
	orderDomain "github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
)

// InvoiceRenderer menghasilkan artefak HTML invoice. Rendering PDF/HTML
// lanjutan adalah collaborator eksternal; renderer bawaan ini cukup untuk
// lampiran email.
type InvoiceRenderer interface {
	RenderHTML(invoice invoiceDomain.Invoice, order orderDomain.Order, items []orderDomain.OrderItem) (string, error)
}

const invoiceTemplateText = `<!DOCTYPE html>
<html>
<head><title>Invoice {{.Invoice.Number}}</title></head>
<body>
  <h1>Invoice {{.Invoice.Number}}</h1>
  <p>Order: {{.Order.ID}}</p>
  <p>Date: {{.IssuedAt}}</p>
  <table border="1" cellpadding="4">
    <tr><th>Product</th><th>Qty</th><th>Unit Price</th><th>Subtotal</th></tr>
    {{range .Lines}}
    <tr><td>{{.ProductID}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Subtotal}}</td></tr>
    {{end}}
  </table>
  <p><b>Total: {{.Total}}</b></p>
</body>
</html>`

type invoiceLine struct {
	ProductID string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type invoiceTemplateData struct {
	Invoice  invoiceDomain.Invoice
	Order    orderDomain.Order
	IssuedAt string
	Lines    []invoiceLine
	Total    string
}

type htmlInvoiceRenderer struct {
	tmpl *template.Template
}

func NewHTMLInvoiceRenderer() InvoiceRenderer {
	return &htmlInvoiceRenderer{
		tmpl: template.Must(template.New("invoice").Parse(invoiceTemplateText)),
	}
}

func (r *htmlInvoiceRenderer) RenderHTML(invoice invoiceDomain.Invoice, order orderDomain.Order, items []orderDomain.OrderItem) (string, error) {
	data := invoiceTemplateData{
		Invoice:  invoice,
		Order:    order,
		IssuedAt: invoice.CreatedAt.Format(time.RFC1123),
		Total:    order.TotalPrice.StringFixed(2),
	}
	for _, item := range items {
		subtotal := item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity)))
		data.Lines = append(data.Lines, invoiceLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceAtPurchase.StringFixed(2),
			Subtotal:  subtotal.StringFixed(2),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
