package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/metrics"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/clock"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// TokenPublisher is told about the tokens of every committed invoice
type TokenPublisher interface {
	PublishTokens(invoiceNumber string, groups []entity.CounterGroup)
}

// InvoiceService builds, stores and reads invoices
type InvoiceService struct {
	tx           repository.TransactionManager
	invoiceRepo  repository.InvoiceRepository
	productRepo  repository.ProductRepository
	settingsRepo repository.PaymentSettingsRepository
	tokens       *CounterTokenService
	numbers      *snowflake.Node
	prefix       string
	publisher    TokenPublisher
	metrics      *metrics.Metrics
	clock        clock.Clock
	loc          *time.Location
	log          *zap.Logger
}

// InvoiceServiceDeps groups the collaborators of InvoiceService
type InvoiceServiceDeps struct {
	Tx           repository.TransactionManager
	InvoiceRepo  repository.InvoiceRepository
	ProductRepo  repository.ProductRepository
	SettingsRepo repository.PaymentSettingsRepository
	Tokens       *CounterTokenService
	Numbers      *snowflake.Node
	Prefix       string
	Publisher    TokenPublisher
	Metrics      *metrics.Metrics
	Clock        clock.Clock
	Location     *time.Location
	Logger       *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(deps InvoiceServiceDeps) *InvoiceService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &InvoiceService{
		tx:           deps.Tx,
		invoiceRepo:  deps.InvoiceRepo,
		productRepo:  deps.ProductRepo,
		settingsRepo: deps.SettingsRepo,
		tokens:       deps.Tokens,
		numbers:      deps.Numbers,
		prefix:       deps.Prefix,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
		clock:        deps.Clock,
		loc:          deps.Location,
		log:          deps.Logger,
	}
}

// SelectedVariation is the variation a cashier picked for a cart line
type SelectedVariation struct {
	Name  string
	Price decimal.Decimal
}

// CartItemInput is one line of the submitted cart
type CartItemInput struct {
	ProductID uuid.UUID
	Variation *SelectedVariation
	Quantity  int
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	CustomerName    string
	MobileNumber    string
	PaymentMode     string
	ReferenceNumber string
	CartItems       []CartItemInput
	CreatedBy       uuid.UUID
}

// CreateInvoice prices the cart, groups it by counter, issues one token per
// counter and stores the invoice, all in one transaction
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	mode, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetOrCreate(ctx, entity.DefaultPaymentSettings())
	if err != nil {
		return nil, apperror.NewInternalError("failed to create invoice", err)
	}
	if mode == enum.PaymentModeCash && !settings.EnableCash {
		return nil, apperror.NewFieldError("paymentMode", "Cash payments are disabled")
	}
	if mode == enum.PaymentModeOnline && !settings.EnableUpi {
		return nil, apperror.NewFieldError("paymentMode", "Online payments are disabled")
	}

	now := s.clock.Now()
	invoice := &entity.Invoice{
		InvoiceNumber:   s.prefix + s.numbers.Generate().String(),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		MobileNumber:    strings.TrimSpace(input.MobileNumber),
		PaymentMode:     mode,
		ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
		CreatedBy:       input.CreatedBy,
		CreatedAt:       now,
	}
	tokenDate := now.In(s.loc).Format(TokenDateLayout)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		lines, err := s.resolveLines(txCtx, input.CartItems)
		if err != nil {
			return err
		}

		cart := make([]entity.CartItem, 0, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			item := toCartItem(line)
			cart = append(cart, item)
			total = total.Add(item.Total)
		}

		groups := groupByCounter(cart)
		for i := range groups {
			token, err := s.tokens.NextToken(txCtx, groups[i].CounterNo, tokenDate)
			if err != nil {
				return err
			}
			groups[i].CounterTokenNumber = token
		}

		invoice.CartItems = datatypes.JSONSlice[entity.CartItem](cart)
		invoice.TotalAmount = total
		invoice.CounterWiseData = datatypes.JSONSlice[entity.CounterGroup](groups)
		invoice.Items = make([]entity.InvoiceItem, 0, len(cart))
		for _, item := range cart {
			invoice.Items = append(invoice.Items, entity.InvoiceItem{
				ProductID:   item.Product,
				ProductName: item.ProductName,
				CounterNo:   item.CounterNo,
				Quantity:    item.TotalQuantity,
				Total:       item.Total,
			})
		}

		return s.invoiceRepo.Create(txCtx, invoice)
	})
	if err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr) && appErr.Code < 500:
			return nil, appErr
		case infraRepo.IsDuplicateKeyErr(err):
			return nil, apperror.NewConflictError("Invoice number already exists")
		default:
			s.log.Error("failed to create invoice",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.String("user_id", input.CreatedBy.String()),
				zap.Error(err))
			return nil, apperror.NewInternalError("failed to create invoice", err)
		}
	}

	if s.publisher != nil {
		s.publisher.PublishTokens(invoice.InvoiceNumber, invoice.CounterWiseData)
	}
	s.metrics.InvoiceCreated(string(invoice.PaymentMode), invoice.TotalAmount.InexactFloat64())
	s.log.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("user_id", input.CreatedBy.String()),
		zap.String("total", invoice.TotalAmount.String()),
		zap.Int("counters", len(invoice.CounterWiseData)))

	return invoice, nil
}

func (s *InvoiceService) validateCreate(input *CreateInvoiceInput) (enum.PaymentMode, error) {
	var fieldErrors []apperror.FieldError

	mode, ok := enum.ParsePaymentMode(input.PaymentMode)
	if !ok {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "paymentMode", Message: "Payment mode must be cash or online"})
	}
	if input.CreatedBy == uuid.Nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "createdBy", Message: "Invoice creator is required"})
	}
	if m := strings.TrimSpace(input.MobileNumber); m != "" && ValidatePhone(m) != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "mobileNumber", Message: "Mobile number must be 10 digits"})
	}
	if len(input.CartItems) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cartItems", Message: "Cart is empty"})
	}
	for _, item := range input.CartItems {
		if item.ProductID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cartItems.product", Message: "Product is required"})
			break
		}
		if item.Quantity < 1 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cartItems.quantity", Message: "Quantity must be at least 1"})
			break
		}
	}

	if len(fieldErrors) > 0 {
		return "", apperror.NewValidationError(fieldErrors)
	}
	return mode, nil
}

// resolveLines loads the referenced products and turns each cart line into a
// priced LineItem
func (s *InvoiceService) resolveLines(ctx context.Context, items []CartItemInput) ([]LineItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError("Product " + item.ProductID.String())
		}
		line, err := newLineItem(product, item)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// newLineItem picks the line shape from the product. The catalog price is
// used even when the client sent a different one.
func newLineItem(product *entity.Product, item CartItemInput) (LineItem, error) {
	if product.HasVariations() {
		if item.Variation == nil || strings.TrimSpace(item.Variation.Name) == "" {
			return nil, apperror.NewFieldError("cartItems.selectedVariation", "Select a variation for "+product.Name)
		}
		v, ok := product.FindVariation(strings.TrimSpace(item.Variation.Name))
		if !ok {
			return nil, apperror.NewFieldError("cartItems.selectedVariation", "Unknown variation "+item.Variation.Name+" for "+product.Name)
		}
		return WithVariation{Product: product, Variation: v, Quantity: item.Quantity}, nil
	}

	if item.Variation != nil && strings.TrimSpace(item.Variation.Name) != "" {
		return nil, apperror.NewFieldError("cartItems.selectedVariation", product.Name+" has no variations")
	}
	return FlatPriced{Product: product, UnitPrice: product.BasePrice, Quantity: item.Quantity}, nil
}

// groupByCounter splits the cart by counter number. Groups are ordered by
// counter, items keep their cart order.
func groupByCounter(cart []entity.CartItem) []entity.CounterGroup {
	index := make(map[int]int)
	var groups []entity.CounterGroup
	for _, item := range cart {
		i, ok := index[item.CounterNo]
		if !ok {
			i = len(groups)
			index[item.CounterNo] = i
			groups = append(groups, entity.CounterGroup{CounterNo: item.CounterNo})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].CounterNo < groups[b].CounterNo })
	return groups
}

// GetInvoice returns an invoice. Billers can only read their own.
func (s *InvoiceService) GetInvoice(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch invoice", err)
	}
	if invoice == nil || (!actor.IsAdmin() && invoice.CreatedBy != actor.ID) {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoicesInput represents the list invoices input
type ListInvoicesInput struct {
	StartDate  string
	EndDate    string
	UserID     string
	Pagination *pagination.PaginationParams
}

// ListInvoices lists invoices newest first. Billers only see their own; admins
// may filter by userId ("all" or empty for everyone).
func (s *InvoiceService) ListInvoices(ctx context.Context, actor Actor, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	filter := repository.InvoiceFilter{Pagination: params}

	if input.StartDate != "" || input.EndDate != "" {
		from, to, err := resolveDateRange(input.StartDate, input.EndDate, s.clock.Now(), s.loc)
		if err != nil {
			return nil, err
		}
		filter.From, filter.To = &from, &to
	}

	createdBy, err := scopeToActor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	filter.CreatedBy = createdBy

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch invoices", err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// scopeToActor resolves the createdBy filter. Non-admins are always pinned to
// themselves whatever userID they pass.
func scopeToActor(actor Actor, userID string) (*uuid.UUID, error) {
	if !actor.IsAdmin() {
		id := actor.ID
		return &id, nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.EqualFold(userID, "all") {
		return nil, nil
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.NewFieldError("userId", "Invalid user id")
	}
	return &id, nil
}
