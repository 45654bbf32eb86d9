package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/apparel-store/internal/cart/domain"
	"github.com/ridloal/apparel-store/internal/cart/repository"
	"github.com/ridloal/apparel-store/internal/cart/service"
	"github.com/ridloal/apparel-store/internal/platform/auth"
	"github.com/ridloal/apparel-store/internal/platform/logger"
	pRepo "github.com/ridloal/apparel-store/internal/product/repository"
	"github.com/ridloal/apparel-store/internal/storage"
)

const designField = "design"

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cs service.CartService) *CartHandler {
	return &CartHandler{cartService: cs}
}

// RegisterRoutes: semua route cart butuh user yang sudah login.
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authenticated ...gin.HandlerFunc) {
	cartRoutes := router.Group("/cart", authenticated...)
	{
		cartRoutes.GET("", h.GetCart)
		cartRoutes.DELETE("", h.ClearCart)
		cartRoutes.POST("/items", h.AddItem)
		cartRoutes.PUT("/items/:itemId", h.UpdateItem)
		cartRoutes.DELETE("/items/:itemId", h.RemoveItem)
	}
}

func currentUser(c *gin.Context) (string, bool) {
	id, ok := auth.GetIdentity(c)
	if !ok || id.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return id.UserID, true
}

// readDesign mengambil file desain opsional dari form multipart.
// Pemanggil wajib memanggil close.
func readDesign(c *gin.Context) (*service.DesignUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(designField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.DesignUpload{Filename: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cart, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "GetCart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req domain.AddItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	design, closeDesign, err := readDesign(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid design upload: " + err.Error()})
		return
	}
	defer closeDesign()

	cart, err := h.cartService.AddItem(c.Request.Context(), userID, req, design)
	if err != nil {
		h.writeError(c, "AddItem", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req domain.UpdateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	design, closeDesign, err := readDesign(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid design upload: " + err.Error()})
		return
	}
	defer closeDesign()

	cart, err := h.cartService.UpdateItem(c.Request.Context(), userID, c.Param("itemId"), req, design)
	if err != nil {
		h.writeError(c, "UpdateItem", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), userID, c.Param("itemId"))
	if err != nil {
		h.writeError(c, "RemoveItem", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		h.writeError(c, "ClearCart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *CartHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, pRepo.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSize),
		errors.Is(err, service.ErrInvalidColor),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, storage.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrObjectTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrCartConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(op+": service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process cart request"})
	}
}
