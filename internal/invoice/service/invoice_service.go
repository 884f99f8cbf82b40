package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ridloal/e-commerce-go-order-core/internal/invoice/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/invoice/repository"
	orderDomain "github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

// InvoiceService membuat record invoice lalu merender + mengirim emailnya.
// Seluruh rantai ini berjalan SETELAH transaksi payment ter-commit; kegagalan
// di sini dicatat, tidak pernah dipropagasikan sebagai kegagalan payment.
type InvoiceService interface {
	IssueInvoice(ctx context.Context, order orderDomain.Order, items []orderDomain.OrderItem, toEmail string) (string, error)
}

type invoiceServiceImpl struct {
	repo     repository.InvoiceRepository
	renderer InvoiceRenderer
	notifier NotificationClient
}

func NewInvoiceService(repo repository.InvoiceRepository, renderer InvoiceRenderer, notifier NotificationClient) InvoiceService {
	return &invoiceServiceImpl{repo: repo, renderer: renderer, notifier: notifier}
}

func (s *invoiceServiceImpl) IssueInvoice(ctx context.Context, order orderDomain.Order, items []orderDomain.OrderItem, toEmail string) (string, error) {
	invoice := &domain.Invoice{
		OrderID: order.ID,
		Number:  uuid.NewString(),
	}
	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		return "", fmt.Errorf("failed to create invoice record: %w", err)
	}

	html, err := s.renderer.RenderHTML(*invoice, order, items)
	if err != nil {
		return "", fmt.Errorf("failed to render invoice: %w", err)
	}

	// Email best-effort: invoice record dan HTML-nya tetap sukses meskipun
	// notification service sedang down.
	if err := s.notifier.SendInvoiceEmail(ctx, toEmail, order.ID, html); err != nil {
		logger.Error(fmt.Sprintf("IssueInvoice: failed to email invoice for order %s", order.ID), err, nil)
	}

	return html, nil
}
