package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/marketplace/internal/checkout/application"
	"github.com/wyfcoding/marketplace/internal/checkout/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
	"github.com/wyfcoding/marketplace/pkg/logger"
	"github.com/wyfcoding/marketplace/pkg/middleware"
)

// SignatureHeader 网关回调签名头
const SignatureHeader = "Stripe-Signature"

type Handler struct {
	checkout *application.CheckoutService
}

func NewHandler(checkout *application.CheckoutService) *Handler {
	return &Handler{checkout: checkout}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/checkout")
	g.GET("", h.GetCheckoutForm)
	g.POST("", h.BeginCheckout)
	g.GET("/success", h.PaymentSuccess)
	g.GET("/cancel", h.PaymentCancel)
}

// RegisterWebhookRoutes 注册网关回调路由。回调不携带浏览器会话，
// 单独挂载以绕过会话中间件。
func (h *Handler) RegisterWebhookRoutes(r *gin.RouterGroup) {
	r.POST("/v1/webhooks/stripe", h.Webhook)
}

func requester(c *gin.Context) (*uint, pricing.Category) {
	id, authenticated := middleware.UserID(c)
	category := pricing.CategoryOf(authenticated, middleware.UserType(c))
	if !authenticated {
		return nil, category
	}
	return &id, category
}

func (h *Handler) GetCheckoutForm(c *gin.Context) {
	userID, _ := requester(c)
	form, err := h.checkout.GetCheckoutForm(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *Handler) BeginCheckout(c *gin.Context) {
	var form domain.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, category := requester(c)
	session, err := h.checkout.BeginCheckout(c.Request.Context(), middleware.SessionID(c), userID, category, form)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrNoValidItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "url": session.URL})
}

func (h *Handler) PaymentSuccess(c *gin.Context) {
	userID, _ := requester(c)
	order, err := h.checkout.CompleteFromCallback(c.Request.Context(), middleware.SessionID(c), userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "could not find payment session; if payment was made, check your orders",
				"redirect": "/orders",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
		"total":    order.TotalAmount,
	})
}

func (h *Handler) PaymentCancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "payment was cancelled",
		"redirect": "/checkout",
	})
}

func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	err = h.checkout.HandleWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			c.Status(http.StatusBadRequest)
			return
		}
		logger.Error(c.Request.Context(), "webhook processing failed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
