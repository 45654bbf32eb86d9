package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/order/repository"
	"github.com/ridloal/apparel-store/internal/order/service"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/platform/auth"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

type OrderHandler struct {
	orderService service.OrderService
	authz        auth.Authorizer
}

func NewOrderHandler(os service.OrderService, authz auth.Authorizer) *OrderHandler {
	return &OrderHandler{orderService: os, authz: authz}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, authenticate gin.HandlerFunc) {
	orderRoutes := router.Group("/orders", authenticate)
	{
		orderRoutes.POST("", h.CreateOrder)
		orderRoutes.GET("", h.ListMyOrders)
		orderRoutes.GET("/:id", h.GetOrder)
		orderRoutes.GET("/:id/status", h.GetOrderStatus)
	}

	adminRoutes := router.Group("/admin/orders", authenticate)
	{
		adminRoutes.GET("", auth.RequirePermission(h.authz, auth.ResourceOrders, auth.ActionReadAny), h.ListAllOrders)
		adminRoutes.PUT("/:id", auth.RequirePermission(h.authz, auth.ResourceOrders, auth.ActionUpdateFulfillment), h.UpdateFulfillmentStatus)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	id, _ := auth.GetIdentity(c)

	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), id.UserID, req.ShippingDetails)
	if err != nil {
		h.writeError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	id, _ := auth.GetIdentity(c)
	orders, err := h.orderService.ListMyOrders(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeError(c, "ListMyOrders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) fetchOrder(c *gin.Context) (*domain.Order, bool) {
	id, _ := auth.GetIdentity(c)
	isAdmin := h.authz.Can(id.Role, auth.ResourceOrders, auth.ActionReadAny)

	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"), id.UserID, isAdmin)
	if err != nil {
		h.writeError(c, "GetOrder", err)
		return nil, false
	}
	return order, true
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	if order, ok := h.fetchOrder(c); ok {
		c.JSON(http.StatusOK, order)
	}
}

func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	if order, ok := h.fetchOrder(c); ok {
		c.JSON(http.StatusOK, order.Status())
	}
}

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	orders, err := h.orderService.ListAllOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, "ListAllOrders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateFulfillmentStatus(c *gin.Context) {
	var req domain.UpdateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	order, err := h.orderService.UpdateFulfillmentStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, "UpdateFulfillmentStatus", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidOrderTotal),
		errors.Is(err, service.ErrInvalidFulfillmentStatus),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, gateway.ErrMissingOrderField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotPayable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrderCreationFailed):
		logger.Error(op+": order could not be persisted", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Order creation failed"})
	default:
		logger.Error(op+": unhandled service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process order request"})
	}
}
