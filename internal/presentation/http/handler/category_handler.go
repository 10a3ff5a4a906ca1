package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// parseOptionalID parses an optional UUID form value
func parseOptionalID(c *gin.Context, raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "Invalid ID format")
		return nil, false
	}
	return &id, true
}

// List handles listing categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}

// Save creates a category, or updates it when the form carries an id
// @Summary Save Category
// @Tags categories
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /category [post]
func (h *CategoryHandler) Save(c *gin.Context) {
	var req request.SaveCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}
	id, ok := parseOptionalID(c, req.ID)
	if !ok {
		return
	}

	category, err := h.categoryService.SaveCategory(c.Request.Context(), &service.SaveCategoryInput{
		ID:        id,
		Name:      req.Name,
		CounterNo: req.CounterNo,
		Image:     req.Image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if id == nil {
		response.Created(c, "Category created successfully", category)
		return
	}
	response.OK(c, "Category updated successfully", category)
}

// Delete handles deleting a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category deleted successfully", nil)
}
