package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/marketplace/internal/user/application"
	"github.com/wyfcoding/marketplace/internal/user/domain"
	"github.com/wyfcoding/marketplace/pkg/middleware"
)

// IdentityHeader 上游认证网关注入的用户标识头
const IdentityHeader = "X-User-ID"

// IdentityMiddleware 解析受信身份头并加载用户档案。
// 头缺失或用户不存在时请求按访客继续。
func IdentityMiddleware(users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(IdentityHeader)
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		user, err := users.GetByID(c.Request.Context(), uint(id))
		if err != nil {
			c.Next()
			return
		}
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.UserTypeKey, string(user.UserType))
		c.Next()
	}
}

type Handler struct {
	users *application.UserService
}

func NewHandler(users *application.UserService) *Handler {
	return &Handler{users: users}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/users")
	g.GET("/me", h.GetProfile)
	g.GET("/me/addresses", h.ListAddresses)
	g.POST("/me/addresses", h.AddAddress)
	g.PUT("/me/addresses/:id/default", h.SetDefaultAddress)
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"username":  user.Username,
		"user_type": user.UserType,
		"phone":     user.Phone,
	})
}

func (h *Handler) ListAddresses(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	addresses, err := h.users.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (h *Handler) AddAddress(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req struct {
		FullName   string `json:"full_name" binding:"required"`
		Address    string `json:"address" binding:"required"`
		City       string `json:"city" binding:"required"`
		State      string `json:"state" binding:"required"`
		PostalCode string `json:"postal_code" binding:"required"`
		Country    string `json:"country" binding:"required"`
		Phone      string `json:"phone" binding:"required"`
		SetDefault bool   `json:"set_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	address, err := h.users.AddAddress(c.Request.Context(), application.AddAddressCommand{
		UserID:     userID,
		FullName:   req.FullName,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		SetDefault: req.SetDefault,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": address.ID, "default": address.Default})
}

func (h *Handler) SetDefaultAddress(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}
	if err := h.users.SetDefaultAddress(c.Request.Context(), userID, uint(addressID)); err != nil {
		if errors.Is(err, domain.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
