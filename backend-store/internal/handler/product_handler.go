package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

// ProductHandler serves the catalog
type ProductHandler struct {
	products service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create lists a product for the calling seller
// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	p, err := h.products.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	products, err := h.products.List(c.Request.Context(), optionalCaller(c), &q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update handles PATCH /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	p, err := h.products.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Product")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
