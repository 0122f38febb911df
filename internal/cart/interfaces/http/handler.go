package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/marketplace/internal/cart/application"
	cartdomain "github.com/wyfcoding/marketplace/internal/cart/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
	"github.com/wyfcoding/marketplace/pkg/middleware"
)

type Handler struct {
	cmd   *application.CartCommandService
	query *application.CartQueryService
}

func NewHandler(cmd *application.CartCommandService, query *application.CartQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/cart")
	g.GET("", h.GetCart)
	g.POST("/items", h.AddItem)
	g.PUT("/items/:key", h.UpdateItem)
	g.DELETE("/items/:key", h.RemoveItem)
	g.DELETE("", h.Clear)
}

func requesterCategory(c *gin.Context) pricing.Category {
	_, authenticated := middleware.UserID(c)
	return pricing.CategoryOf(authenticated, middleware.UserType(c))
}

func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.query.GetCart(c.Request.Context(), middleware.SessionID(c), requesterCategory(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) AddItem(c *gin.Context) {
	var req struct {
		ProductID uint   `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := h.cmd.AddItem(c.Request.Context(), middleware.SessionID(c), req.ProductID, req.Quantity, req.Size, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrProductUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, application.ErrInvalidVariant),
			errors.Is(err, cartdomain.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.cmd.UpdateItem(c.Request.Context(), middleware.SessionID(c), c.Param("key"), req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	if err := h.cmd.RemoveItem(c.Request.Context(), middleware.SessionID(c), c.Param("key")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Clear(c *gin.Context) {
	if err := h.cmd.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
