package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

// NotificationClient mengirim email lewat notification service eksternal.
// Pemanggil memperlakukan error dari sini sebagai non-fatal.
type NotificationClient interface {
	SendInvoiceEmail(ctx context.Context, toEmail, orderID, invoiceHTML string) error
	SendRefundDecisionEmail(ctx context.Context, toEmail, requestID, decision, message string) error
}

type invoiceEmailRequest struct {
	To          string `json:"to"`
	OrderID     string `json:"order_id"`
	Subject     string `json:"subject"`
	InvoiceHTML string `json:"invoice_html"`
}

type notificationErrorResponse struct {
	Message string `json:"message"`
}

type httpNotificationClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHTTPNotificationClient(baseURL string) NotificationClient {
	return &httpNotificationClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *httpNotificationClient) doSend(ctx context.Context, path string, payload interface{}) error {
	reqURL := fmt.Sprintf("%s/api/v1/notifications/%s", c.BaseURL, path)

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("NotificationClient.%s: Marshal failed", path), err, nil)
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		logger.Error(fmt.Sprintf("NotificationClient.%s: NewRequest failed", path), err, nil)
		return fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("NotificationClient.%s: HTTPClient.Do failed", path), err, nil)
		return fmt.Errorf("failed to call notification service for %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		var errResp notificationErrorResponse
		// Coba decode error response, tapi jangan sampai error decode menutupi error utama
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		errMsg := fmt.Sprintf("notification service %s returned status %d", path, resp.StatusCode)
		if errResp.Message != "" {
			errMsg = fmt.Sprintf("%s - %s", errMsg, errResp.Message)
		}
		logger.Error(errMsg, nil)
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (c *httpNotificationClient) SendInvoiceEmail(ctx context.Context, toEmail, orderID, invoiceHTML string) error {
	return c.doSend(ctx, "invoice-email", invoiceEmailRequest{
		To:          toEmail,
		OrderID:     orderID,
		Subject:     fmt.Sprintf("Invoice for order %s", orderID),
		InvoiceHTML: invoiceHTML,
	})
}

type refundDecisionEmailRequest struct {
	To        string `json:"to"`
	RequestID string `json:"request_id"`
	Decision  string `json:"decision"`
	Message   string `json:"message"`
}

func (c *httpNotificationClient) SendRefundDecisionEmail(ctx context.Context, toEmail, requestID, decision, message string) error {
	return c.doSend(ctx, "refund-decision-email", refundDecisionEmailRequest{
		To:        toEmail,
		RequestID: requestID,
		Decision:  decision,
		Message:   message,
	})
}
