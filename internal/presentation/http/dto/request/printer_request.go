package request

// UpdatePaymentSettingsRequest updates the top level settings. Omitted fields
// are left unchanged.
type UpdatePaymentSettingsRequest struct {
	EnableCash       *bool   `json:"enableCash"`
	EnableUpi        *bool   `json:"enableUpi"`
	DefaultUpiID     *string `json:"defaultUpiId"`
	DefaultPrinterID *string `json:"defaultPrinterId"`
}

// UpiAccountRequest is the body of the UPI account endpoints
type UpiAccountRequest struct {
	UpiID        string `json:"upiId" binding:"required"`
	BusinessName string `json:"businessName" binding:"required"`
	IsDefault    bool   `json:"isDefault"`
}

// PrinterRequest is the body of the printer endpoints
type PrinterRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	Silent          bool   `json:"silent"`
	PrintBackground bool   `json:"printBackground"`
	Color           bool   `json:"color"`
	Copies          int    `json:"copies"`
	DeviceName      string `json:"deviceName"`
	IsDefault       bool   `json:"isDefault"`
	IsActive        *bool  `json:"isActive"`
}
