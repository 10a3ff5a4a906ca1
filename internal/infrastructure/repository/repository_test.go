package repository_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/testutil"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func createUser(t *testing.T, repo domainRepo.UserRepository, name string, role enum.Role) *entity.User {
	t.Helper()
	u := &entity.User{
		Name:     name,
		Email:    name + "@example.com",
		Phone:    uuid.NewString()[:10],
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createInvoice(t *testing.T, repo domainRepo.InvoiceRepository, by uuid.UUID, at time.Time, amount string, items ...entity.InvoiceItem) *entity.Invoice {
	t.Helper()
	inv := &entity.Invoice{
		InvoiceNumber: "INV-" + uuid.NewString(),
		PaymentMode:   enum.PaymentModeCash,
		CartItems:     datatypes.JSONSlice[entity.CartItem]{},
		TotalAmount:   decimal.RequireFromString(amount),
		CreatedBy:     by,
		CreatedAt:     at,
		Items:         items,
	}
	require.NoError(t, repo.Create(context.Background(), inv))
	return inv
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	admin := createUser(t, repo, "alice", enum.RoleAdmin)
	createUser(t, repo, "bob", "")

	t.Run("lookup by email and phone", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, admin.ID, got.ID)

		got, err = repo.GetByPhone(ctx, admin.Phone)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, admin.ID, got.ID)
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("default role is biller", func(t *testing.T) {
		count, err := repo.CountByRole(ctx, enum.RoleBiller)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &entity.User{Name: "x", Email: "alice@example.com", Phone: "0000000000", Password: "h"}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, repository.IsDuplicateKeyErr(err))
	})

	t.Run("update persists block flag", func(t *testing.T) {
		admin.IsBlocked = true
		require.NoError(t, repo.Update(ctx, admin))
		got, err := repo.GetByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.True(t, got.IsBlocked)
	})
}

func TestCategoryAndProductRepository(t *testing.T) {
	db := testutil.NewDB(t)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	ctx := context.Background()

	drinks := &entity.Category{Name: "Drinks", CounterNo: 1}
	require.NoError(t, categories.Create(ctx, drinks))

	for _, name := range []string{"Masala Tea", "Lime Soda", "Coffee"} {
		require.NoError(t, products.Create(ctx, &entity.Product{
			Name:       name,
			CategoryID: drinks.ID,
			Price:      "20",
			BasePrice:  decimal.NewFromInt(20),
			CounterNo:  1,
		}))
	}

	require.NoError(t, categories.RefreshProductCount(ctx, drinks.ID))
	got, err := categories.GetByID(ctx, drinks.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalProducts)

	t.Run("search is case insensitive", func(t *testing.T) {
		list, err := products.List(ctx, domainRepo.ProductFilter{Search: "TEA"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Masala Tea", list[0].Name)
	})

	t.Run("filter by category with preload", func(t *testing.T) {
		list, err := products.List(ctx, domainRepo.ProductFilter{CategoryID: &drinks.ID, WithCategory: true})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Coffee", list[0].Name)
		require.NotNil(t, list[0].Category)
		assert.Equal(t, "Drinks", list[0].Category.Name)
	})

	t.Run("sync counter number", func(t *testing.T) {
		require.NoError(t, products.SyncCounterNo(ctx, drinks.ID, 4))
		list, err := products.List(ctx, domainRepo.ProductFilter{CategoryID: &drinks.ID})
		require.NoError(t, err)
		for _, p := range list {
			assert.Equal(t, 4, p.CounterNo)
		}
	})

	t.Run("get by ids", func(t *testing.T) {
		list, err := products.List(ctx, domainRepo.ProductFilter{})
		require.NoError(t, err)
		ids := []uuid.UUID{list[0].ID, list[1].ID, uuid.New()}
		found, err := products.GetByIDs(ctx, ids)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		empty, err := products.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("variations round trip through json column", func(t *testing.T) {
		p := &entity.Product{
			Name:       "Juice",
			CategoryID: drinks.ID,
			Price:      "₹40-60",
			CounterNo:  1,
			Variations: datatypes.JSONSlice[entity.Variation]{
				{Name: "Small", Price: decimal.NewFromInt(40)},
				{Name: "Large", Price: decimal.NewFromInt(60)},
			},
		}
		require.NoError(t, products.Create(ctx, p))
		got, err := products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		v, ok := got.FindVariation("Large")
		require.True(t, ok)
		assert.True(t, v.Price.Equal(decimal.NewFromInt(60)))
	})

	t.Run("deleted products drop out of the count", func(t *testing.T) {
		list, err := products.List(ctx, domainRepo.ProductFilter{Search: "coffee"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NoError(t, products.Delete(ctx, list[0].ID))
		require.NoError(t, categories.RefreshProductCount(ctx, drinks.ID))
		got, err := categories.GetByID(ctx, drinks.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalProducts)
	})
}

func TestInvoiceRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	invoices := repository.NewInvoiceRepository(db)
	ctx := context.Background()

	biller := createUser(t, users, "biller", enum.RoleBiller)
	other := createUser(t, users, "other", enum.RoleBiller)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createInvoice(t, invoices, biller.ID, base.Add(time.Duration(i)*time.Hour), "10")
	}
	createInvoice(t, invoices, other.ID, base, "99")

	list, total, err := invoices.List(ctx, domainRepo.InvoiceFilter{
		CreatedBy:  &biller.ID,
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	require.NotNil(t, list[0].Creator)
	assert.Equal(t, "biller", list[0].Creator.Name)

	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)
	_, total, err = invoices.List(ctx, domainRepo.InvoiceFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	got, err := invoices.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(10)))
}

func TestCounterTokenRepository_Next(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewCounterTokenRepository(db)
	ctx := context.Background()

	first, err := repo.Next(ctx, 1, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.Next(ctx, 1, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	otherCounter, err := repo.Next(ctx, 2, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, otherCounter)

	nextDay, err := repo.Next(ctx, 1, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 1, nextDay)

	tokens, err := repo.ListByDate(ctx, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, 1, tokens[0].CounterNo)
	assert.Equal(t, 2, tokens[0].TokenNumber)
}

func TestCounterTokenRepository_ConcurrentNext(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewCounterTokenRepository(db)

	const n = 20
	results := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := repo.Next(context.Background(), 3, "2026-03-01")
			assert.NoError(t, err)
			results[i] = token
		}(i)
	}
	wg.Wait()

	sort.Ints(results)
	for i, token := range results {
		assert.Equal(t, i+1, token)
	}
}

func TestTransactionManager_RollbackUndoesTokens(t *testing.T) {
	db := testutil.NewDB(t)
	tm := repository.NewTransactionManager(db)
	tokens := repository.NewCounterTokenRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		token, err := tokens.Next(txCtx, 1, "2026-03-01")
		require.NoError(t, err)
		assert.Equal(t, 1, token)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	token, err := tokens.Next(ctx, 1, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, token)
}

func TestPaymentSettingsRepository_GetOrCreate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPaymentSettingsRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, entity.DefaultPaymentSettings())
	require.NoError(t, err)
	assert.True(t, first.EnableCash)
	assert.False(t, first.EnableUpi)

	first.EnableUpi = true
	first.UpiAccounts = append(first.UpiAccounts, entity.UPIAccount{ID: "a1", UpiID: "shop@okbank", BusinessName: "Shop"})
	require.NoError(t, repo.Save(ctx, first))

	second, err := repo.GetOrCreate(ctx, entity.DefaultPaymentSettings())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.EnableUpi)
	require.Len(t, second.UpiAccounts, 1)
	assert.Equal(t, "shop@okbank", second.UpiAccounts[0].UpiID)

	var count int64
	require.NoError(t, db.Model(&entity.PaymentSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIdempotencyRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pending := func(key string, expiresAt time.Time) *entity.IdempotencyKey {
		return &entity.IdempotencyKey{
			Key: key, UserID: userID, Endpoint: "POST /invoice/", RequestHash: "h", ExpiresAt: expiresAt,
		}
	}

	expired := pending("k1", now.Add(-time.Minute))
	require.NoError(t, db.Create(expired).Error)

	live := pending("k2", now.Add(time.Hour))
	ok, err := repo.Reserve(ctx, live, now)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("a live key is reserved once", func(t *testing.T) {
		ok, err := repo.Reserve(ctx, pending("k2", now.Add(time.Hour)), now)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetByKey(ctx, "k2", userID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsPending())
	})

	t.Run("the same key for another user is independent", func(t *testing.T) {
		other := pending("k2", now.Add(time.Hour))
		other.UserID = uuid.New()
		ok, err := repo.Reserve(ctx, other, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("complete stores the response", func(t *testing.T) {
		require.NoError(t, repo.Complete(ctx, live.ID, 201, `{"ok":true}`))
		got, err := repo.GetByKey(ctx, "k2", userID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 201, got.ResponseCode)
		assert.False(t, got.IsPending())

		missing, err := repo.GetByKey(ctx, "k2", uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("release frees the key", func(t *testing.T) {
		k3 := pending("k3", now.Add(time.Hour))
		ok, err := repo.Reserve(ctx, k3, now)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, repo.Release(ctx, k3.ID))

		ok, err = repo.Reserve(ctx, pending("k3", now.Add(time.Hour)), now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete expired", func(t *testing.T) {
		deleted, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("an expired key that was not purged yet is replaced", func(t *testing.T) {
		require.NoError(t, db.Create(pending("k4", now.Add(-time.Minute))).Error)

		fresh := pending("k4", now.Add(time.Hour))
		fresh.RequestHash = "h2"
		ok, err := repo.Reserve(ctx, fresh, now)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := repo.GetByKey(ctx, "k4", userID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "h2", got.RequestHash)
	})
}

func TestIdempotencyRepository_ConcurrentReserve(t *testing.T) {
	repo := repository.NewIdempotencyRepository(testutil.NewDB(t))
	userID := uuid.New()
	now := time.Now()

	const n = 10
	var wg sync.WaitGroup
	var won atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Reserve(context.Background(), &entity.IdempotencyKey{
				Key: "same", UserID: userID, Endpoint: "POST /invoice/", RequestHash: "h", ExpiresAt: now.Add(time.Hour),
			}, now)
			assert.NoError(t, err)
			if ok {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won.Load())
}

func TestSalesRepository(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	invoices := repository.NewInvoiceRepository(db)
	sales := repository.NewSalesRepository(db)
	ctx := context.Background()

	admin := createUser(t, users, "admin", enum.RoleAdmin)
	ravi := createUser(t, users, "ravi", enum.RoleBiller)
	createUser(t, users, "zoya", enum.RoleBiller)

	tea, coffee := uuid.New(), uuid.New()
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	createInvoice(t, invoices, ravi.ID, day, "100",
		entity.InvoiceItem{ProductID: tea, ProductName: "Tea", CounterNo: 1, Quantity: 5, Total: decimal.NewFromInt(50)},
		entity.InvoiceItem{ProductID: coffee, ProductName: "Coffee", CounterNo: 1, Quantity: 1, Total: decimal.NewFromInt(50)},
	)
	createInvoice(t, invoices, ravi.ID, day.Add(2*time.Hour), "20",
		entity.InvoiceItem{ProductID: tea, ProductName: "Tea", CounterNo: 1, Quantity: 2, Total: decimal.NewFromInt(20)},
	)
	createInvoice(t, invoices, admin.ID, day.AddDate(0, 0, 1), "30.50")

	t.Run("summary over range", func(t *testing.T) {
		s, err := sales.Summary(ctx, domainRepo.SalesFilter{From: day, To: day.Add(23 * time.Hour)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), s.TotalOrders)
		assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(120)), s.TotalRevenue.String())
	})

	t.Run("summary scoped to creator", func(t *testing.T) {
		s, err := sales.Summary(ctx, domainRepo.SalesFilter{From: day, To: day.AddDate(0, 0, 2), CreatedBy: &admin.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.TotalOrders)
		assert.True(t, s.TotalRevenue.Equal(decimal.RequireFromString("30.5")), s.TotalRevenue.String())
	})

	t.Run("empty range", func(t *testing.T) {
		s, err := sales.Summary(ctx, domainRepo.SalesFilter{From: day.AddDate(1, 0, 0), To: day.AddDate(1, 0, 1)})
		require.NoError(t, err)
		assert.Equal(t, int64(0), s.TotalOrders)
		assert.True(t, s.TotalRevenue.IsZero())
	})

	t.Run("sale points ascending", func(t *testing.T) {
		points, err := sales.ListSalePoints(ctx, domainRepo.SalesFilter{From: day, To: day.AddDate(0, 0, 2)})
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.True(t, points[0].CreatedAt.Before(points[2].CreatedAt))
	})

	t.Run("product quantities", func(t *testing.T) {
		top, err := sales.ProductQuantities(ctx, 5, true)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Tea", top[0].ProductName)
		assert.Equal(t, int64(7), top[0].TotalQuantity)

		least, err := sales.ProductQuantities(ctx, 1, false)
		require.NoError(t, err)
		require.Len(t, least, 1)
		assert.Equal(t, coffee, least[0].ProductID)
	})

	t.Run("biller counts include idle billers", func(t *testing.T) {
		counts, err := sales.BillerOrderCounts(ctx)
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "ravi", counts[0].Name)
		assert.Equal(t, int64(2), counts[0].OrderCount)
		assert.Equal(t, "zoya", counts[1].Name)
		assert.Equal(t, int64(0), counts[1].OrderCount)
	})
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, repository.IsDuplicateKeyErr(nil))
	assert.True(t, repository.IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, repository.IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, repository.IsDuplicateKeyErr(errors.New("connection refused")))
}
