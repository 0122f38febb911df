package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/marketplace/internal/catalog/application"
	"github.com/wyfcoding/marketplace/internal/catalog/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
	"github.com/wyfcoding/marketplace/pkg/middleware"
)

type Handler struct {
	catalog *application.CatalogService
}

func NewHandler(catalog *application.CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/catalog")
	g.GET("/products", h.ListProducts)
	g.GET("/products/:slug", h.GetProduct)
	g.GET("/categories", h.ListCategories)
}

func requesterCategory(c *gin.Context) pricing.Category {
	_, authenticated := middleware.UserID(c)
	return pricing.CategoryOf(authenticated, middleware.UserType(c))
}

func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "12"))
	q := domain.ListQuery{
		CategorySlug: c.Query("category"),
		Sort:         domain.ProductSort(c.DefaultQuery("sort", string(domain.SortLatest))),
		Page:         page,
		PageSize:     pageSize,
	}
	result, err := h.catalog.ListProducts(c.Request.Context(), q, requesterCategory(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetProduct(c *gin.Context) {
	detail, err := h.catalog.GetProduct(c.Request.Context(), c.Param("slug"), requesterCategory(c))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
