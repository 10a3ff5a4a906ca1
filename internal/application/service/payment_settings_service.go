package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
)

const (
	minCopies = 1
	maxCopies = 10
)

// PaymentSettingsService manages the payment and printer settings singleton.
// Concurrent writers are last-write-wins.
type PaymentSettingsService struct {
	settingsRepo repository.PaymentSettingsRepository
}

// NewPaymentSettingsService creates a new payment settings service
func NewPaymentSettingsService(settingsRepo repository.PaymentSettingsRepository) *PaymentSettingsService {
	return &PaymentSettingsService{settingsRepo: settingsRepo}
}

// GetSettings returns the settings, creating the defaults on first read
func (s *PaymentSettingsService) GetSettings(ctx context.Context) (*entity.PaymentSettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, entity.DefaultPaymentSettings())
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch payment settings", err)
	}
	return settings, nil
}

// PublicPaymentSettings is what the cashier screen may read without a session
type PublicPaymentSettings struct {
	EnableCash bool               `json:"enableCash"`
	EnableUpi  bool               `json:"enableUpi"`
	DefaultUpi *entity.UPIAccount `json:"defaultUpi"`
}

// GetPublicSettings returns the enabled modes and the default UPI account
func (s *PaymentSettingsService) GetPublicSettings(ctx context.Context) (*PublicPaymentSettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := &PublicPaymentSettings{EnableCash: settings.EnableCash, EnableUpi: settings.EnableUpi}
	if settings.EnableUpi {
		out.DefaultUpi = settings.DefaultUpiAccount()
	}
	return out, nil
}

// UpdateSettingsInput holds the top level fields. Nil fields are unchanged.
type UpdateSettingsInput struct {
	EnableCash       *bool
	EnableUpi        *bool
	DefaultUpiID     *string
	DefaultPrinterID *string
}

// UpdateSettings updates the top level settings fields
func (s *PaymentSettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		if input.EnableCash != nil {
			settings.EnableCash = *input.EnableCash
		}
		if input.EnableUpi != nil {
			settings.EnableUpi = *input.EnableUpi
		}
		if input.DefaultUpiID != nil {
			id := strings.TrimSpace(*input.DefaultUpiID)
			if id != "" && settings.FindUpiAccount(id) < 0 {
				return apperror.NewFieldError("defaultUpiId", "Default UPI account does not exist")
			}
			settings.DefaultUpiID = id
		}
		if input.DefaultPrinterID != nil {
			id := strings.TrimSpace(*input.DefaultPrinterID)
			if id != "" && settings.FindPrinter(id) < 0 {
				return apperror.NewFieldError("defaultPrinterId", "Default printer does not exist")
			}
			markDefaultPrinter(settings, id)
		}
		return nil
	})
}

// UpiInput represents a UPI account to add or update
type UpiInput struct {
	UpiID        string
	BusinessName string
	IsDefault    bool
}

// AddUpiAccount adds a UPI account. The first account becomes the default.
func (s *PaymentSettingsService) AddUpiAccount(ctx context.Context, input *UpiInput) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		account, err := validateUpi(settings, "", input)
		if err != nil {
			return err
		}
		account.ID = uuid.NewString()
		settings.UpiAccounts = append(settings.UpiAccounts, account)
		if input.IsDefault || settings.DefaultUpiID == "" {
			settings.DefaultUpiID = account.ID
		}
		return nil
	})
}

// UpdateUpiAccount replaces the fields of an existing UPI account
func (s *PaymentSettingsService) UpdateUpiAccount(ctx context.Context, id string, input *UpiInput) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		idx := settings.FindUpiAccount(id)
		if idx < 0 {
			return apperror.NewNotFoundError("UPI account")
		}
		account, err := validateUpi(settings, id, input)
		if err != nil {
			return err
		}
		account.ID = id
		settings.UpiAccounts[idx] = account
		if input.IsDefault {
			settings.DefaultUpiID = id
		}
		return nil
	})
}

// DeleteUpiAccount removes a UPI account, clearing the default if it was it
func (s *PaymentSettingsService) DeleteUpiAccount(ctx context.Context, id string) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		idx := settings.FindUpiAccount(id)
		if idx < 0 {
			return apperror.NewNotFoundError("UPI account")
		}
		settings.UpiAccounts = append(settings.UpiAccounts[:idx], settings.UpiAccounts[idx+1:]...)
		if settings.DefaultUpiID == id {
			settings.DefaultUpiID = ""
		}
		return nil
	})
}

// SetDefaultUpiAccount makes id the default UPI account
func (s *PaymentSettingsService) SetDefaultUpiAccount(ctx context.Context, id string) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		if settings.FindUpiAccount(id) < 0 {
			return apperror.NewNotFoundError("UPI account")
		}
		settings.DefaultUpiID = id
		return nil
	})
}

func validateUpi(settings *entity.PaymentSettings, selfID string, input *UpiInput) (entity.UPIAccount, error) {
	upiID := strings.TrimSpace(input.UpiID)
	name := strings.TrimSpace(input.BusinessName)
	if err := ValidateUpiID(upiID); err != nil {
		return entity.UPIAccount{}, err
	}
	if name == "" {
		return entity.UPIAccount{}, apperror.NewFieldError("businessName", "Business name is required")
	}
	for _, a := range settings.UpiAccounts {
		if a.ID != selfID && strings.EqualFold(a.UpiID, upiID) {
			return entity.UPIAccount{}, apperror.NewConflictError("UPI ID already exists")
		}
	}
	return entity.UPIAccount{UpiID: upiID, BusinessName: name}, nil
}

// PrinterInput represents a printer to add or update
type PrinterInput struct {
	Name            string
	Type            string
	Silent          bool
	PrintBackground bool
	Color           bool
	Copies          int
	DeviceName      string
	IsDefault       bool
	IsActive        *bool
}

// AddPrinter adds a printer configuration
func (s *PaymentSettingsService) AddPrinter(ctx context.Context, input *PrinterInput) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		printer, err := validatePrinter(input, true)
		if err != nil {
			return err
		}
		printer.ID = uuid.NewString()
		printer.IsDefault = false
		settings.Printers = append(settings.Printers, printer)
		if input.IsDefault || settings.DefaultPrinterID == "" {
			markDefaultPrinter(settings, printer.ID)
		}
		return nil
	})
}

// UpdatePrinter replaces the fields of an existing printer
func (s *PaymentSettingsService) UpdatePrinter(ctx context.Context, id string, input *PrinterInput) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		idx := settings.FindPrinter(id)
		if idx < 0 {
			return apperror.NewNotFoundError("Printer")
		}
		printer, err := validatePrinter(input, settings.Printers[idx].IsActive)
		if err != nil {
			return err
		}
		printer.ID = id
		printer.IsDefault = settings.Printers[idx].IsDefault
		settings.Printers[idx] = printer
		if input.IsDefault {
			markDefaultPrinter(settings, id)
		}
		return nil
	})
}

// DeletePrinter removes a printer, clearing the default if it was it
func (s *PaymentSettingsService) DeletePrinter(ctx context.Context, id string) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		idx := settings.FindPrinter(id)
		if idx < 0 {
			return apperror.NewNotFoundError("Printer")
		}
		settings.Printers = append(settings.Printers[:idx], settings.Printers[idx+1:]...)
		if settings.DefaultPrinterID == id {
			markDefaultPrinter(settings, "")
		}
		return nil
	})
}

// SetDefaultPrinter makes id the only default printer
func (s *PaymentSettingsService) SetDefaultPrinter(ctx context.Context, id string) (*entity.PaymentSettings, error) {
	return s.mutate(ctx, func(settings *entity.PaymentSettings) error {
		if settings.FindPrinter(id) < 0 {
			return apperror.NewNotFoundError("Printer")
		}
		markDefaultPrinter(settings, id)
		return nil
	})
}

// DefaultPrinter returns the default printer, or nil when none is set
func (s *PaymentSettingsService) DefaultPrinter(ctx context.Context) (*entity.PrinterSetting, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if idx := settings.FindPrinter(settings.DefaultPrinterID); idx >= 0 && settings.DefaultPrinterID != "" {
		p := settings.Printers[idx]
		return &p, nil
	}
	return nil, nil
}

func validatePrinter(input *PrinterInput, activeDefault bool) (entity.PrinterSetting, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return entity.PrinterSetting{}, apperror.NewFieldError("name", "Printer name is required")
	}
	printerType := enum.PrinterType(strings.TrimSpace(input.Type))
	if !printerType.IsValid() {
		return entity.PrinterSetting{}, apperror.NewFieldError("type", "Printer type must be thermal-80mm, thermal-58mm or standard-a4")
	}
	copies := input.Copies
	if copies == 0 {
		copies = minCopies
	}
	if copies < minCopies || copies > maxCopies {
		return entity.PrinterSetting{}, apperror.NewFieldError("copies", "Copies must be between 1 and 10")
	}
	active := activeDefault
	if input.IsActive != nil {
		active = *input.IsActive
	}
	return entity.PrinterSetting{
		Name:            name,
		Type:            printerType,
		Silent:          input.Silent,
		PrintBackground: input.PrintBackground,
		Color:           input.Color,
		Copies:          copies,
		DeviceName:      strings.TrimSpace(input.DeviceName),
		IsActive:        active,
	}, nil
}

// markDefaultPrinter keeps IsDefault true on at most the printer with id
func markDefaultPrinter(settings *entity.PaymentSettings, id string) {
	settings.DefaultPrinterID = id
	for i := range settings.Printers {
		settings.Printers[i].IsDefault = id != "" && settings.Printers[i].ID == id
	}
}

func (s *PaymentSettingsService) mutate(ctx context.Context, fn func(*entity.PaymentSettings) error) (*entity.PaymentSettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(settings); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, apperror.NewInternalError("failed to save payment settings", err)
	}
	return settings, nil
}
