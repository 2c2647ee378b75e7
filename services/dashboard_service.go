package services

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
)

type AnalyticsStore interface {
	CountOrdersByStatus(ctx context.Context) ([]repository.StatusCount, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)
	Revenue(ctx context.Context, since time.Time) (float64, error)
	OrderTimesSince(ctx context.Context, since time.Time) ([]repository.OrderTimes, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]repository.TopProduct, error)
}

type OrderStatusStats struct {
	Pending   int64 `json:"pending"`
	Preparing int64 `json:"preparing"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type DashboardStats struct {
	TotalOrders  int64            `json:"total_orders"`
	TodayOrders  int64            `json:"today_orders"`
	TotalRevenue float64          `json:"total_revenue"`
	TodayRevenue float64          `json:"today_revenue"`
	AvgPrepTime  float64          `json:"avg_prep_time"`
	OrderStats   OrderStatusStats `json:"order_stats"`
}

type DailyStat struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type Analytics struct {
	Days        int                     `json:"days"`
	Daily       []DailyStat             `json:"daily"`
	TopProducts []repository.TopProduct `json:"top_products"`
}

const maxAnalyticsDays = 90

type DashboardService struct {
	loc *time.Location
	now func() time.Time
}

func NewDashboardService(loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{loc: loc, now: time.Now}
}

func (s *DashboardService) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

func (s *DashboardService) Stats(ctx context.Context, store AnalyticsStore) (*DashboardStats, error) {
	today := s.startOfDay(s.now())
	stats := &DashboardStats{}

	counts, err := store.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, Upstream("Erro ao carregar estatísticas", err)
	}
	for _, c := range counts {
		stats.TotalOrders += c.Count
		switch c.Status {
		case models.OrderPending:
			stats.OrderStats.Pending = c.Count
		case models.OrderPreparing:
			stats.OrderStats.Preparing = c.Count
		case models.OrderCompleted:
			stats.OrderStats.Completed = c.Count
		case models.OrderCancelled:
			stats.OrderStats.Cancelled = c.Count
		}
	}

	if stats.TodayOrders, err = store.CountOrdersSince(ctx, today); err != nil {
		return nil, Upstream("Erro ao carregar estatísticas", err)
	}
	if stats.TotalRevenue, err = store.Revenue(ctx, time.Time{}); err != nil {
		return nil, Upstream("Erro ao carregar estatísticas", err)
	}
	if stats.TodayRevenue, err = store.Revenue(ctx, today); err != nil {
		return nil, Upstream("Erro ao carregar estatísticas", err)
	}

	times, err := store.OrderTimesSince(ctx, today.AddDate(0, 0, -30))
	if err != nil {
		return nil, Upstream("Erro ao carregar estatísticas", err)
	}
	stats.AvgPrepTime = averagePrepMinutes(times)
	return stats, nil
}

// Analytics reports the last days (today included) day by day.
func (s *DashboardService) Analytics(ctx context.Context, store AnalyticsStore, days int) (*Analytics, error) {
	if days < 1 || days > maxAnalyticsDays {
		return nil, BadRequest("Período inválido")
	}
	since := s.startOfDay(s.now()).AddDate(0, 0, -(days - 1))

	times, err := store.OrderTimesSince(ctx, since)
	if err != nil {
		return nil, Upstream("Erro ao carregar análises", err)
	}
	top, err := store.TopProducts(ctx, since, 5)
	if err != nil {
		return nil, Upstream("Erro ao carregar análises", err)
	}

	daily := make([]DailyStat, days)
	index := make(map[string]int, days)
	for i := range daily {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		daily[i].Date = date
		index[date] = i
	}
	for _, o := range times {
		i, ok := index[o.CreatedAt.In(s.loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		daily[i].Orders++
		if o.Status == models.OrderCompleted {
			daily[i].Revenue = roundCents(daily[i].Revenue + o.TotalAmount)
		}
	}

	if top == nil {
		top = []repository.TopProduct{}
	}
	return &Analytics{Days: days, Daily: daily, TopProducts: top}, nil
}

func averagePrepMinutes(times []repository.OrderTimes) float64 {
	var (
		total time.Duration
		n     int
	)
	for _, o := range times {
		if o.AcceptedAt == nil || o.CompletedAt == nil || o.CompletedAt.Before(*o.AcceptedAt) {
			continue
		}
		total += o.CompletedAt.Sub(*o.AcceptedAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return roundCents(total.Minutes() / float64(n))
}
