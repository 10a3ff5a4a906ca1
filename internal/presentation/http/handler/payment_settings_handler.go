package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// PaymentSettingsHandler handles payment and printer settings requests
type PaymentSettingsHandler struct {
	settingsService *service.PaymentSettingsService
}

// NewPaymentSettingsHandler creates a new payment settings handler
func NewPaymentSettingsHandler(settingsService *service.PaymentSettingsService) *PaymentSettingsHandler {
	return &PaymentSettingsHandler{settingsService: settingsService}
}

// Get returns the full settings document
func (h *PaymentSettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment settings retrieved successfully", settings)
}

// GetPublic returns what the checkout screen needs
func (h *PaymentSettingsHandler) GetPublic(c *gin.Context) {
	settings, err := h.settingsService.GetPublicSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment settings retrieved successfully", settings)
}

// Update handles a partial update of the top level settings
func (h *PaymentSettingsHandler) Update(c *gin.Context) {
	var req request.UpdatePaymentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &service.UpdateSettingsInput{
		EnableCash:       req.EnableCash,
		EnableUpi:        req.EnableUpi,
		DefaultUpiID:     req.DefaultUpiID,
		DefaultPrinterID: req.DefaultPrinterID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment settings updated successfully", settings)
}

func bindUpi(c *gin.Context) (*service.UpiInput, bool) {
	var req request.UpiAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "UPI ID and business name are required")
		return nil, false
	}
	return &service.UpiInput{
		UpiID:        req.UpiID,
		BusinessName: req.BusinessName,
		IsDefault:    req.IsDefault,
	}, true
}

// AddUpi adds a UPI account
func (h *PaymentSettingsHandler) AddUpi(c *gin.Context) {
	input, ok := bindUpi(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.AddUpiAccount(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "UPI account added successfully", settings)
}

// UpdateUpi updates a UPI account
func (h *PaymentSettingsHandler) UpdateUpi(c *gin.Context) {
	input, ok := bindUpi(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.UpdateUpiAccount(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "UPI account updated successfully", settings)
}

// DeleteUpi removes a UPI account
func (h *PaymentSettingsHandler) DeleteUpi(c *gin.Context) {
	settings, err := h.settingsService.DeleteUpiAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "UPI account deleted successfully", settings)
}

// SetDefaultUpi marks a UPI account as the default
func (h *PaymentSettingsHandler) SetDefaultUpi(c *gin.Context) {
	settings, err := h.settingsService.SetDefaultUpiAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Default UPI account updated successfully", settings)
}

func bindPrinter(c *gin.Context) (*service.PrinterInput, bool) {
	var req request.PrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Printer name and type are required")
		return nil, false
	}
	return &service.PrinterInput{
		Name:            req.Name,
		Type:            req.Type,
		Silent:          req.Silent,
		PrintBackground: req.PrintBackground,
		Color:           req.Color,
		Copies:          req.Copies,
		DeviceName:      req.DeviceName,
		IsDefault:       req.IsDefault,
		IsActive:        req.IsActive,
	}, true
}

// AddPrinter adds a printer configuration
func (h *PaymentSettingsHandler) AddPrinter(c *gin.Context) {
	input, ok := bindPrinter(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.AddPrinter(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Printer added successfully", settings)
}

// UpdatePrinter updates a printer configuration
func (h *PaymentSettingsHandler) UpdatePrinter(c *gin.Context) {
	input, ok := bindPrinter(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.UpdatePrinter(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Printer updated successfully", settings)
}

// DeletePrinter removes a printer configuration
func (h *PaymentSettingsHandler) DeletePrinter(c *gin.Context) {
	settings, err := h.settingsService.DeletePrinter(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Printer deleted successfully", settings)
}

// SetDefaultPrinter marks a printer as the default
func (h *PaymentSettingsHandler) SetDefaultPrinter(c *gin.Context) {
	settings, err := h.settingsService.SetDefaultPrinter(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Default printer updated successfully", settings)
}
