package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	orderRepo "github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/service"
)

type RefundHandler struct {
	refundService service.RefundService
}

func NewRefundHandler(rs service.RefundService) *RefundHandler {
	return &RefundHandler{refundService: rs}
}

func (h *RefundHandler) RegisterRoutes(router *gin.RouterGroup) {
	refundRoutes := router.Group("")
	refundRoutes.Use(auth.Middleware())
	{
		refundRoutes.POST("/orders/:id/refund", h.RefundOrder)
		refundRoutes.GET("/refunds/mine", h.ListMyRefunds)
		refundRoutes.POST("/refund-requests", h.CreateRefundRequest)
		refundRoutes.GET("/refund-requests/pending", h.ListPendingRequests)
		refundRoutes.POST("/refund-requests/:id/process", h.ProcessRefundRequest)
	}
}

func (h *RefundHandler) RefundOrder(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	var req domain.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	resp, err := h.refundService.Refund(c.Request.Context(), c.Param("id"), req.Lines, actor)
	if err != nil {
		switch {
		case errors.Is(err, orderRepo.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orderRepo.ErrOrderItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotDelivered),
			errors.Is(err, service.ErrExceedsRefundable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()}) // 409 Conflict
		default:
			logger.Error("RefundOrder Hdl: unhandled service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund order"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RefundHandler) ListMyRefunds(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	refunds, err := h.refundService.ListMyRefunds(c.Request.Context(), actor)
	if err != nil {
		logger.Error("ListMyRefunds Hdl: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list refunds"})
		return
	}
	c.JSON(http.StatusOK, refunds)
}

func (h *RefundHandler) CreateRefundRequest(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	var body domain.CreateRefundRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	req, err := h.refundService.CreateRefundRequest(c.Request.Context(), body.OrderItemID, body.Quantity, actor)
	if err != nil {
		switch {
		case errors.Is(err, orderRepo.ErrOrderItemNotFound), errors.Is(err, orderRepo.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order item not found"})
		case errors.Is(err, service.ErrOrderNotDelivered),
			errors.Is(err, service.ErrExceedsRefundable),
			errors.Is(err, service.ErrRefundWindowExpired):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("CreateRefundRequest Hdl: unhandled service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create refund request"})
		}
		return
	}

	c.JSON(http.StatusCreated, req)
}

func (h *RefundHandler) ListPendingRequests(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	reqs, err := h.refundService.ListPendingRequests(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Sales manager role required"})
			return
		}
		logger.Error("ListPendingRequests Hdl: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list refund requests"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *RefundHandler) ProcessRefundRequest(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	var body domain.ProcessRefundRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	req, err := h.refundService.ProcessRefundRequest(c.Request.Context(), c.Param("id"), domain.RefundRequestStatus(body.Decision), body.Message, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Sales manager role required"})
		case errors.Is(err, repository.ErrRequestNotFound):
			// Request yang sudah diputus juga jatuh ke sini.
			c.JSON(http.StatusNotFound, gin.H{"error": "Pending refund request not found"})
		case errors.Is(err, service.ErrExceedsRefundable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("ProcessRefundRequest Hdl: unhandled service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund request"})
		}
		return
	}

	c.JSON(http.StatusOK, req)
}
