package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	"github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/order/service"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(os service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Use(auth.Middleware())
	{
		orderRoutes.POST("", h.PlaceOrder)
		orderRoutes.GET("/mine", h.ListMyOrders)
		orderRoutes.GET("/:id/items", h.GetOrderItems)
		orderRoutes.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	resp, err := h.orderService.PlaceOrder(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()}) // 409 Conflict
			return
		}
		logger.Error("PlaceOrder Hdl: unhandled service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order_id": resp.ID, "order": resp})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status: " + string(req.Status)})
		return
	}

	order, err := h.orderService.TransitionStatus(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to change this order's status"})
		case errors.Is(err, domain.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("UpdateStatus Hdl: unhandled service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": order.Status})
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	orders, err := h.orderService.ListMyOrders(c.Request.Context(), actor)
	if err != nil {
		logger.Error("ListMyOrders Hdl: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderItems(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not found in context"})
		return
	}

	items, err := h.orderService.GetOrderItems(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		logger.Error("GetOrderItems Hdl: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order items"})
		return
	}
	c.JSON(http.StatusOK, items)
}
