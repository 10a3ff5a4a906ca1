package service

import (
	"context"
	"time"

	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/metrics"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/clock"
)

// TokenDateLayout is the format of counter token dates
const TokenDateLayout = "2006-01-02"

// CounterTokenService hands out per counter daily token numbers
type CounterTokenService struct {
	tokens  repository.CounterTokenRepository
	clock   clock.Clock
	loc     *time.Location
	metrics *metrics.Metrics
}

// NewCounterTokenService creates a new counter token service
func NewCounterTokenService(
	tokens repository.CounterTokenRepository,
	clk clock.Clock,
	loc *time.Location,
	m *metrics.Metrics,
) *CounterTokenService {
	if loc == nil {
		loc = time.Local
	}
	return &CounterTokenService{tokens: tokens, clock: clk, loc: loc, metrics: m}
}

// Today returns the business-local date tokens are issued for
func (s *CounterTokenService) Today() string {
	return s.clock.Now().In(s.loc).Format(TokenDateLayout)
}

// NextToken returns the next token for counterNo on date
func (s *CounterTokenService) NextToken(ctx context.Context, counterNo int, date string) (int, error) {
	if counterNo < 0 {
		return 0, apperror.NewFieldError("counterNo", "Counter number cannot be negative")
	}
	if _, err := time.Parse(TokenDateLayout, date); err != nil {
		return 0, apperror.NewFieldError("date", "Date must be YYYY-MM-DD")
	}

	token, err := s.tokens.Next(ctx, counterNo, date)
	if err != nil {
		return 0, err
	}
	s.metrics.TokenIssued(counterNo)
	return token, nil
}

// ListToday returns the latest token of every counter that served today
func (s *CounterTokenService) ListToday(ctx context.Context) ([]entity.CounterToken, error) {
	tokens, err := s.tokens.ListByDate(ctx, s.Today())
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch counter tokens", err)
	}
	if tokens == nil {
		tokens = []entity.CounterToken{}
	}
	return tokens, nil
}
