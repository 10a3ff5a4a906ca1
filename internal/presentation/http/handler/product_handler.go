package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/apperror"
)

// ProductHandler handles product HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products
// @Summary List Products
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name search"
// @Param categoryId query string false "Category filter"
// @Success 200 {object} response.APIResponse
// @Router /product [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req request.ProductFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	categoryID, ok := parseOptionalID(c, req.CategoryID)
	if !ok {
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), repository.ProductFilter{
		CategoryID:   categoryID,
		Search:       req.Search,
		WithCategory: true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", products)
}

// Get handles fetching one product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Save creates a product, or updates it when the form carries an id
func (h *ProductHandler) Save(c *gin.Context) {
	var req request.SaveProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}
	id, ok := parseOptionalID(c, req.ID)
	if !ok {
		return
	}
	categoryID, ok := parseOptionalID(c, req.CategoryID)
	if !ok {
		return
	}

	var variations []entity.Variation
	if req.Variations != "" {
		if err := json.Unmarshal([]byte(req.Variations), &variations); err != nil {
			response.Error(c, apperror.NewFieldError("variations", "Variations must be a JSON array of {name, price}"))
			return
		}
	}

	input := &service.SaveProductInput{
		ID:         id,
		Name:       req.Name,
		Price:      req.Price,
		Variations: variations,
		Image:      req.Image,
	}
	if categoryID != nil {
		input.CategoryID = *categoryID
	}

	product, err := h.productService.SaveProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if id == nil {
		response.Created(c, "Product created successfully", product)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

// CategoryWiseList returns every category with its products
func (h *ProductHandler) CategoryWiseList(c *gin.Context) {
	groups, err := h.productService.CategoryWiseList(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", groups)
}
