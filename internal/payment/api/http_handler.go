package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	orderRepo "github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/service"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(ps service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	paymentRoutes := router.Group("")
	paymentRoutes.Use(auth.Middleware())
	{
		paymentRoutes.POST("/orders/:id/payment", h.ProcessPayment)
		paymentRoutes.GET("/payment/transactions", h.ListMyTransactions)
	}
}

func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	var card domain.CardDetails
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	resp, err := h.paymentService.ProcessPayment(c.Request.Context(), c.Param("id"), card, actor)
	if err != nil {
		switch {
		case errors.Is(err, orderRepo.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, domain.ErrMissingFields),
			errors.Is(err, domain.ErrInvalidCardNumber),
			errors.Is(err, domain.ErrInvalidExpiry),
			errors.Is(err, domain.ErrCardExpired),
			errors.Is(err, domain.ErrInvalidCVV):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()}) // 409 Conflict
		default:
			logger.Error("ProcessPayment Hdl: unhandled service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListMyTransactions(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	trxs, err := h.paymentService.ListMyTransactions(c.Request.Context(), actor)
	if err != nil {
		logger.Error("ListMyTransactions Hdl: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, trxs)
}
