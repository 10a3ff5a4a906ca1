package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentSettingsKey is the only value allowed in payment_settings.singleton_key
const PaymentSettingsKey = "default"

// UPIAccount is a UPI handle customers can pay to
type UPIAccount struct {
	ID           string `json:"id"`
	UpiID        string `json:"upiId"`
	BusinessName string `json:"businessName"`
}

// PrinterSetting configures one printer used by the cashier shells
type PrinterSetting struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            enum.PrinterType `json:"type"`
	Silent          bool             `json:"silent"`
	PrintBackground bool             `json:"printBackground"`
	Color           bool             `json:"color"`
	Copies          int              `json:"copies"`
	DeviceName      string           `json:"deviceName"`
	IsDefault       bool             `json:"isDefault"`
	IsActive        bool             `json:"isActive"`
}

// PaymentSettings is the singleton payment and printer configuration
type PaymentSettings struct {
	ID               uuid.UUID                           `gorm:"type:uuid;primary_key" json:"id"`
	SingletonKey     string                              `gorm:"size:32;uniqueIndex;not null" json:"-"`
	EnableCash       bool                                `gorm:"not null" json:"enableCash"`
	EnableUpi        bool                                `gorm:"not null" json:"enableUpi"`
	UpiAccounts      datatypes.JSONSlice[UPIAccount]     `json:"upiAccounts"`
	DefaultUpiID     string                              `gorm:"size:64" json:"defaultUpiId"`
	Printers         datatypes.JSONSlice[PrinterSetting] `json:"printers"`
	DefaultPrinterID string                              `gorm:"size:64" json:"defaultPrinterId"`
	CreatedAt        time.Time                           `json:"createdAt"`
	UpdatedAt        time.Time                           `json:"updatedAt"`
}

// DefaultPaymentSettings returns the document created on first read
func DefaultPaymentSettings() *PaymentSettings {
	return &PaymentSettings{
		SingletonKey: PaymentSettingsKey,
		EnableCash:   true,
		EnableUpi:    false,
		UpiAccounts:  datatypes.JSONSlice[UPIAccount]{},
		Printers:     datatypes.JSONSlice[PrinterSetting]{},
	}
}

// BeforeCreate generates a UUID before creating the settings row
func (s *PaymentSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentSettings model
func (PaymentSettings) TableName() string {
	return "payment_settings"
}

// FindUpiAccount returns the index of the account with id, or -1
func (s *PaymentSettings) FindUpiAccount(id string) int {
	for i, a := range s.UpiAccounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// FindPrinter returns the index of the printer with id, or -1
func (s *PaymentSettings) FindPrinter(id string) int {
	for i, p := range s.Printers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// DefaultUpiAccount returns the account referenced by DefaultUpiID, if any
func (s *PaymentSettings) DefaultUpiAccount() *UPIAccount {
	if idx := s.FindUpiAccount(s.DefaultUpiID); idx >= 0 && s.DefaultUpiID != "" {
		acc := s.UpiAccounts[idx]
		return &acc
	}
	return nil
}
