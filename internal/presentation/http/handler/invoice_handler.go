package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles checkout of a cart
// @Summary Create Invoice
// @Description Price the cart, issue one token per counter and store the invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Retry key"
// @Param request body request.CreateInvoiceRequest true "Cart"
// @Success 201 {object} response.APIResponse
// @Router /invoice [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid invoice payload")
		return
	}

	items := make([]service.CartItemInput, 0, len(req.CartItems))
	for i, item := range req.CartItems {
		productID, err := uuid.Parse(item.Product)
		if err != nil {
			response.Error(c, apperror.NewFieldError(fmt.Sprintf("cartItems[%d].product", i), "Invalid product ID"))
			return
		}
		input := service.CartItemInput{ProductID: productID, Quantity: item.Quantity}
		if item.SelectedVariation != nil {
			input.Variation = &service.SelectedVariation{
				Name:  item.SelectedVariation.Name,
				Price: item.SelectedVariation.Price,
			}
		}
		items = append(items, input)
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		CustomerName:    req.CustomerName,
		MobileNumber:    req.MobileNumber,
		PaymentMode:     req.PaymentMode,
		ReferenceNumber: req.ReferenceNumber,
		CartItems:       items,
		CreatedBy:       actor.ID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// List handles listing invoices with date and biller filters
func (h *InvoiceHandler) List(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		return
	}

	var req request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), actor, &service.ListInvoicesInput{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		UserID:     req.UserID,
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Get handles fetching one invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}
