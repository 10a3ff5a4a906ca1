package service

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/metrics"
	"github.com/sangkips/pos-api/internal/testutil"
	"github.com/sangkips/pos-api/pkg/clock"
	"github.com/sangkips/pos-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]entity.CounterGroup
}

func (p *recordingPublisher) PublishTokens(invoiceNumber string, groups []entity.CounterGroup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]entity.CounterGroup)
	}
	p.events[invoiceNumber] = groups
}

type fakeImageStore struct {
	saved   []string
	deleted []string
}

func (s *fakeImageStore) SaveImage(entity string, fh *multipart.FileHeader) (string, error) {
	url := "http://localhost:8080/uploads/" + entity + "/" + fh.Filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeImageStore) Delete(url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

type fixture struct {
	db        *gorm.DB
	clock     *clock.FakeClock
	loc       *time.Location
	metrics   *metrics.Metrics
	publisher *recordingPublisher
	images    *fakeImageStore

	tx           repository.TransactionManager
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	settingsRepo repository.PaymentSettingsRepository

	tokens     *CounterTokenService
	invoices   *InvoiceService
	sales      *SalesService
	categories *CategoryService
	products   *ProductService
	settings   *PaymentSettingsService
	users      *UserService
	auth       *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	db := testutil.NewDB(t)
	f := &fixture{
		db:           db,
		clock:        clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, loc)),
		loc:          loc,
		metrics:      metrics.New(prometheus.NewRegistry()),
		publisher:    &recordingPublisher{},
		images:       &fakeImageStore{},
		tx:           infraRepo.NewTransactionManager(db),
		userRepo:     infraRepo.NewUserRepository(db),
		categoryRepo: infraRepo.NewCategoryRepository(db),
		productRepo:  infraRepo.NewProductRepository(db),
		invoiceRepo:  infraRepo.NewInvoiceRepository(db),
		settingsRepo: infraRepo.NewPaymentSettingsRepository(db),
	}

	f.tokens = NewCounterTokenService(infraRepo.NewCounterTokenRepository(db), f.clock, loc, f.metrics)
	f.invoices = NewInvoiceService(InvoiceServiceDeps{
		Tx:           f.tx,
		InvoiceRepo:  f.invoiceRepo,
		ProductRepo:  f.productRepo,
		SettingsRepo: f.settingsRepo,
		Tokens:       f.tokens,
		Numbers:      node,
		Prefix:       "INV-",
		Publisher:    f.publisher,
		Metrics:      f.metrics,
		Clock:        f.clock,
		Location:     loc,
	})
	f.sales = NewSalesService(infraRepo.NewSalesRepository(db), f.userRepo, f.clock, loc)
	f.categories = NewCategoryService(f.tx, f.categoryRepo, f.productRepo, f.images, nil)
	f.products = NewProductService(f.tx, f.productRepo, f.categoryRepo, f.images, nil)
	f.settings = NewPaymentSettingsService(f.settingsRepo)
	f.users = NewUserService(f.userRepo, nil, nil)
	f.auth = NewAuthService(f.userRepo, utils.NewJWTManager("test-secret", 24*time.Hour))
	return f
}

func (f *fixture) user(t *testing.T, name string, role enum.Role) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	u := &entity.User{
		Name:     name,
		Email:    name + "@example.com",
		Phone:    uuid.NewString()[:10],
		Password: hash,
		Role:     role,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func (f *fixture) category(t *testing.T, name string, counterNo int) *entity.Category {
	t.Helper()
	c := &entity.Category{Name: name, CounterNo: counterNo}
	require.NoError(t, f.categoryRepo.Create(context.Background(), c))
	return c
}

func (f *fixture) flatProduct(t *testing.T, name string, c *entity.Category, price int64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:       name,
		CategoryID: c.ID,
		Price:      decimal.NewFromInt(price).String(),
		BasePrice:  decimal.NewFromInt(price),
		CounterNo:  c.CounterNo,
		Variations: datatypes.JSONSlice[entity.Variation]{},
	}
	require.NoError(t, f.productRepo.Create(context.Background(), p))
	return p
}

func (f *fixture) variedProduct(t *testing.T, name string, c *entity.Category, variations ...entity.Variation) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:       name,
		CategoryID: c.ID,
		Price:      ComputeDisplayPrice("", variations),
		CounterNo:  c.CounterNo,
		Variations: datatypes.JSONSlice[entity.Variation](variations),
	}
	require.NoError(t, f.productRepo.Create(context.Background(), p))
	return p
}

func (f *fixture) invoiceAt(t *testing.T, by *entity.User, at time.Time, amount string) {
	t.Helper()
	inv := &entity.Invoice{
		InvoiceNumber: "INV-" + uuid.NewString(),
		PaymentMode:   enum.PaymentModeCash,
		CartItems:     datatypes.JSONSlice[entity.CartItem]{},
		TotalAmount:   decimal.RequireFromString(amount),
		CreatedBy:     by.ID,
		CreatedAt:     at,
	}
	require.NoError(t, f.invoiceRepo.Create(context.Background(), inv))
}

func variation(name string, price int64) entity.Variation {
	return entity.Variation{Name: name, Price: decimal.NewFromInt(price)}
}
