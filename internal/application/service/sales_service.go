package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/clock"
	"github.com/shopspring/decimal"
)

const insightLimit = 5

// SalesService provides the dashboard reports
type SalesService struct {
	salesRepo repository.SalesRepository
	userRepo  repository.UserRepository
	clock     clock.Clock
	loc       *time.Location
}

// NewSalesService creates a new sales service
func NewSalesService(
	salesRepo repository.SalesRepository,
	userRepo repository.UserRepository,
	clk clock.Clock,
	loc *time.Location,
) *SalesService {
	if loc == nil {
		loc = time.Local
	}
	return &SalesService{salesRepo: salesRepo, userRepo: userRepo, clock: clk, loc: loc}
}

// SalesOverviewInput represents the sales overview filters
type SalesOverviewInput struct {
	UserID    string
	StartDate string
	EndDate   string
	Period    string
}

// PeriodBucket is the revenue of one day, week or month
type PeriodBucket struct {
	Period       string          `json:"period"`
	StartDate    string          `json:"startDate"`
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// SalesOverview is the result of GetSalesOverview
type SalesOverview struct {
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	PeriodData   []PeriodBucket  `json:"periodData,omitempty"`
	Users        []entity.User   `json:"users"`
}

// GetSalesOverview totals the invoices in the requested window and buckets
// them by period when one is given
func (s *SalesService) GetSalesOverview(ctx context.Context, actor Actor, input *SalesOverviewInput) (*SalesOverview, error) {
	from, to, err := resolveDateRange(input.StartDate, input.EndDate, s.clock.Now(), s.loc)
	if err != nil {
		return nil, err
	}
	createdBy, err := scopeToActor(actor, input.UserID)
	if err != nil {
		return nil, err
	}

	filter := repository.SalesFilter{From: from, To: to, CreatedBy: createdBy}
	summary, err := s.salesRepo.Summary(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch sales overview", err)
	}

	overview := &SalesOverview{
		TotalOrders:  summary.TotalOrders,
		TotalRevenue: summary.TotalRevenue,
		StartDate:    from,
		EndDate:      to,
	}

	if period := enum.ParseSalesPeriod(input.Period); period != enum.PeriodNone {
		points, err := s.salesRepo.ListSalePoints(ctx, filter)
		if err != nil {
			return nil, apperror.NewInternalError("failed to fetch sales overview", err)
		}
		overview.PeriodData = bucketSales(points, period, s.loc)
	}

	overview.Users, err = s.visibleUsers(ctx, actor)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch sales overview", err)
	}
	return overview, nil
}

func (s *SalesService) visibleUsers(ctx context.Context, actor Actor) ([]entity.User, error) {
	if actor.IsAdmin() {
		users, err := s.userRepo.List(ctx)
		if users == nil {
			users = []entity.User{}
		}
		return users, err
	}
	self, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil || self == nil {
		return []entity.User{}, err
	}
	return []entity.User{*self}, nil
}

// bucketSales groups sale points by calendar day, ISO week or month in loc.
// Only buckets that contain a sale are returned, oldest first.
func bucketSales(points []repository.SalePoint, period enum.SalesPeriod, loc *time.Location) []PeriodBucket {
	type acc struct {
		start  time.Time
		label  string
		orders int64
		total  decimal.Decimal
	}
	buckets := make(map[int64]*acc)

	for _, p := range points {
		start, label := bucketOf(p.CreatedAt.In(loc), period)
		key := start.Unix()
		b, ok := buckets[key]
		if !ok {
			b = &acc{start: start, label: label, total: decimal.Zero}
			buckets[key] = b
		}
		b.orders++
		b.total = b.total.Add(p.TotalAmount)
	}

	out := make([]PeriodBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, PeriodBucket{
			Period:       b.label,
			StartDate:    b.start.Format(DateLayout),
			TotalOrders:  b.orders,
			TotalRevenue: b.total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out
}

func bucketOf(t time.Time, period enum.SalesPeriod) (time.Time, string) {
	day := startOfDay(t)
	switch period {
	case enum.PeriodWeekly:
		// ISO weeks start on Monday
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		_, week := t.ISOWeek()
		return monday, fmt.Sprintf("Week %d (%s)", week, monday.Format(DateLayout))
	case enum.PeriodMonthly:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return first, first.Format("January 2006")
	default:
		return day, day.Format(DateLayout)
	}
}

// ProductStat is a product's sold quantity
type ProductStat struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// ProductInsights holds the best and worst sellers
type ProductInsights struct {
	TopProducts   []ProductStat `json:"topProducts"`
	LeastProducts []ProductStat `json:"leastProducts"`
}

// GetProductInsights returns the five most and least sold products across
// all invoices
func (s *SalesService) GetProductInsights(ctx context.Context) (*ProductInsights, error) {
	top, err := s.salesRepo.ProductQuantities(ctx, insightLimit, true)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch product insights", err)
	}
	least, err := s.salesRepo.ProductQuantities(ctx, insightLimit, false)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch product insights", err)
	}
	return &ProductInsights{
		TopProducts:   toProductStats(top),
		LeastProducts: toProductStats(least),
	}, nil
}

func toProductStats(rows []repository.ProductQuantity) []ProductStat {
	stats := make([]ProductStat, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, ProductStat{
			ProductID:     r.ProductID.String(),
			ProductName:   r.ProductName,
			TotalQuantity: r.TotalQuantity,
			TotalRevenue:  r.TotalRevenue,
		})
	}
	return stats
}

// BillerStat is the number of invoices a biller created
type BillerStat struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	OrderCount int64  `json:"orderCount"`
}

// UserStats is the result of GetUserStats
type UserStats struct {
	TotalBillers int64        `json:"totalBillers"`
	BillerStats  []BillerStat `json:"billerStats"`
}

// GetUserStats counts billers and their invoices, including billers with
// no invoices yet
func (s *SalesService) GetUserStats(ctx context.Context) (*UserStats, error) {
	total, err := s.userRepo.CountByRole(ctx, enum.RoleBiller)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch user stats", err)
	}
	rows, err := s.salesRepo.BillerOrderCounts(ctx)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch user stats", err)
	}

	stats := make([]BillerStat, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, BillerStat{
			UserID:     r.UserID.String(),
			Name:       r.Name,
			Email:      r.Email,
			OrderCount: r.OrderCount,
		})
	}
	return &UserStats{TotalBillers: total, BillerStats: stats}, nil
}
