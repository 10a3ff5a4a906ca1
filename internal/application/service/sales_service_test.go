package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesService_GetSalesOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "admin", enum.RoleAdmin)
	alice := f.user(t, "alice", enum.RoleBiller)
	bob := f.user(t, "bob", enum.RoleBiller)

	at := func(day, hour int) time.Time { return time.Date(2026, 3, day, hour, 0, 0, 0, f.loc) }
	f.invoiceAt(t, alice, at(10, 9), "100")
	f.invoiceAt(t, bob, at(10, 11), "40.50")
	// 00:30 IST is still the previous evening in UTC
	f.invoiceAt(t, alice, at(9, 0).Add(30*time.Minute), "60")
	f.invoiceAt(t, alice, at(2, 18), "25")
	f.invoiceAt(t, bob, time.Date(2026, 2, 17, 10, 0, 0, 0, f.loc), "10")

	adminActor := Actor{ID: admin.ID, Role: enum.RoleAdmin}

	t.Run("defaults to today", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), overview.TotalOrders)
		assert.True(t, overview.TotalRevenue.Equal(decimal.RequireFromString("140.5")), overview.TotalRevenue.String())
		assert.Equal(t, "2026-03-10", overview.StartDate.Format(DateLayout))
		assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, int(999*time.Millisecond), f.loc), overview.EndDate)
		assert.Nil(t, overview.PeriodData)
		assert.Len(t, overview.Users, 3)
	})

	t.Run("billers are scoped to themselves", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, Actor{ID: alice.ID, Role: enum.RoleBiller}, &SalesOverviewInput{
			UserID:    bob.ID.String(),
			StartDate: "2026-03-01",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), overview.TotalOrders)
		assert.True(t, overview.TotalRevenue.Equal(decimal.NewFromInt(185)))
		require.Len(t, overview.Users, 1)
		assert.Equal(t, alice.ID, overview.Users[0].ID)
	})

	t.Run("admin filter by user", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{
			UserID:    bob.ID.String(),
			StartDate: "2026-02-01",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), overview.TotalOrders)
	})

	t.Run("daily buckets", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{
			StartDate: "2026-03-09",
			EndDate:   "2026-03-10",
			Period:    "daily",
		})
		require.NoError(t, err)
		require.Len(t, overview.PeriodData, 2)
		assert.Equal(t, "2026-03-09", overview.PeriodData[0].Period)
		assert.Equal(t, int64(1), overview.PeriodData[0].TotalOrders)
		assert.Equal(t, "2026-03-10", overview.PeriodData[1].Period)
		assert.Equal(t, int64(2), overview.PeriodData[1].TotalOrders)
	})

	t.Run("weekly buckets skip empty weeks", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{
			StartDate: "2026-02-16",
			Period:    "weekly",
		})
		require.NoError(t, err)
		require.Len(t, overview.PeriodData, 3)
		assert.Equal(t, "Week 8 (2026-02-16)", overview.PeriodData[0].Period)
		assert.Equal(t, "Week 10 (2026-03-02)", overview.PeriodData[1].Period)
		assert.Equal(t, "Week 11 (2026-03-09)", overview.PeriodData[2].Period)
		assert.Equal(t, int64(3), overview.PeriodData[2].TotalOrders)
		assert.True(t, overview.PeriodData[2].TotalRevenue.Equal(decimal.RequireFromString("200.5")))
	})

	t.Run("monthly buckets", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{
			StartDate: "2026-02-01",
			Period:    "monthly",
		})
		require.NoError(t, err)
		require.Len(t, overview.PeriodData, 2)
		assert.Equal(t, "February 2026", overview.PeriodData[0].Period)
		assert.Equal(t, "2026-02-01", overview.PeriodData[0].StartDate)
		assert.Equal(t, "March 2026", overview.PeriodData[1].Period)
		assert.Equal(t, int64(4), overview.PeriodData[1].TotalOrders)
	})

	t.Run("unknown period returns totals only", func(t *testing.T) {
		overview, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{Period: "hourly"})
		require.NoError(t, err)
		assert.Nil(t, overview.PeriodData)
	})

	t.Run("invalid dates", func(t *testing.T) {
		_, err := f.sales.GetSalesOverview(ctx, adminActor, &SalesOverviewInput{StartDate: "10/03/2026"})
		requireAppError(t, err, http.StatusBadRequest)
	})
}

func TestSalesService_Insights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", enum.RoleBiller)
	f.user(t, "carol", enum.RoleBiller)
	f.user(t, "admin", enum.RoleAdmin)

	snacks := f.category(t, "Snacks", 1)
	tea := f.flatProduct(t, "Tea", snacks, 20)
	samosa := f.flatProduct(t, "Samosa", snacks, 15)

	_, err := f.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PaymentMode: "cash",
		CreatedBy:   alice.ID,
		CartItems: []CartItemInput{
			{ProductID: tea.ID, Quantity: 4},
			{ProductID: samosa.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	_, err = f.invoices.CreateInvoice(ctx, &CreateInvoiceInput{
		PaymentMode: "cash",
		CreatedBy:   alice.ID,
		CartItems:   []CartItemInput{{ProductID: tea.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("product insights", func(t *testing.T) {
		insights, err := f.sales.GetProductInsights(ctx)
		require.NoError(t, err)
		require.Len(t, insights.TopProducts, 2)
		assert.Equal(t, "Tea", insights.TopProducts[0].ProductName)
		assert.Equal(t, int64(5), insights.TopProducts[0].TotalQuantity)
		assert.True(t, insights.TopProducts[0].TotalRevenue.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "Samosa", insights.LeastProducts[0].ProductName)
	})

	t.Run("user stats include idle billers", func(t *testing.T) {
		stats, err := f.sales.GetUserStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalBillers)
		require.Len(t, stats.BillerStats, 2)
		assert.Equal(t, "alice", stats.BillerStats[0].Name)
		assert.Equal(t, int64(2), stats.BillerStats[0].OrderCount)
		assert.Equal(t, "carol", stats.BillerStats[1].Name)
		assert.Equal(t, int64(0), stats.BillerStats[1].OrderCount)
	})
}

func TestBucketOf(t *testing.T) {
	loc := time.UTC
	sunday := time.Date(2026, 3, 15, 22, 0, 0, 0, loc)
	start, label := bucketOf(sunday, enum.PeriodWeekly)
	assert.Equal(t, "2026-03-09", start.Format(DateLayout))
	assert.Equal(t, "Week 11 (2026-03-09)", label)

	// January 1st 2027 still belongs to the last ISO week of 2026
	start, label = bucketOf(time.Date(2027, 1, 1, 0, 0, 0, 0, loc), enum.PeriodWeekly)
	assert.Equal(t, "2026-12-28", start.Format(DateLayout))
	assert.Equal(t, "Week 53 (2026-12-28)", label)

	assert.Empty(t, bucketSales([]repository.SalePoint{}, enum.PeriodDaily, loc))
}
