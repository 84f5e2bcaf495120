package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

const dashboardCacheKey = "dashboard:stats"

// DashboardSummary is the headline counter block.
type DashboardSummary struct {
	TotalFloors      int `json:"totalFloors"`
	TotalTables      int `json:"totalTables"`
	AvailableTables  int `json:"availableTables"`
	BookedTables     int `json:"bookedTables"`
	OccupiedTables   int `json:"occupiedTables"`
	TodayBookings    int `json:"todayBookingCount"`
	TotalGuestsToday int `json:"totalGuestsToday"`
	WaitingParties   int `json:"waitingParties"`
}

// FloorStat is the per-floor table count.
type FloorStat struct {
	FloorID     string `json:"floorId"`
	FloorName   string `json:"floorName"`
	TotalTables int    `json:"totalTables"`
}

// DashboardStats is the full staff dashboard payload.
type DashboardStats struct {
	Summary    DashboardSummary         `json:"summary"`
	FloorStats []FloorStat              `json:"floorStats"`
	SizeStats  map[models.TableSize]int `json:"sizeStats"`
}

// DashboardCounter is the slice of storage the dashboard reads.
type DashboardCounter interface {
	CountFloors(ctx context.Context) (int, error)
	CountTables(ctx context.Context) (int, error)
	CountTablesByStatus(ctx context.Context, status models.TableStatus) (int, error)
	CountTablesBySize(ctx context.Context, size models.TableSize) (int, error)
	ListFloorsWithTables(ctx context.Context) ([]models.Floor, error)
	GetBookingsCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	ListActiveWaiting(ctx context.Context, date string) ([]models.WaitingListEntry, error)
}

// DashboardService aggregates the staff dashboard counters. Results are
// cached in Redis for a short TTL when a client is configured; the dashboard
// is re-requested on every dashboardUpdated push and the counts tolerate a
// few seconds of staleness.
type DashboardService struct {
	store  DashboardCounter
	redis  *redis.Client
	ttl    time.Duration
	clock  func() time.Time
	logger zerolog.Logger
}

func NewDashboardService(store DashboardCounter, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		clock:  time.Now,
		logger: logger.With().Str("component", "dashboard").Logger(),
	}
}

// UseRedisCache configures optional Redis caching for dashboard reads.
func (s *DashboardService) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	s.redis = redisClient
	s.ttl = ttl
}

// Stats computes the dashboard payload.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	if s.readCache(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	now := s.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	stats := &DashboardStats{SizeStats: make(map[models.TableSize]int, 3)}

	var err error
	if stats.Summary.TotalFloors, err = s.store.CountFloors(ctx); err != nil {
		return nil, err
	}
	if stats.Summary.TotalTables, err = s.store.CountTables(ctx); err != nil {
		return nil, err
	}
	if stats.Summary.AvailableTables, err = s.store.CountTablesByStatus(ctx, models.TableAvailable); err != nil {
		return nil, err
	}
	if stats.Summary.BookedTables, err = s.store.CountTablesByStatus(ctx, models.TableBooked); err != nil {
		return nil, err
	}
	if stats.Summary.OccupiedTables, err = s.store.CountTablesByStatus(ctx, models.TableOccupied); err != nil {
		return nil, err
	}

	todayBookings, err := s.store.GetBookingsCreatedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	stats.Summary.TodayBookings = len(todayBookings)
	for _, b := range todayBookings {
		stats.Summary.TotalGuestsToday += b.PeopleCount
	}

	// No date filter: walk-in entries have no requested date and must count.
	waiting, err := s.store.ListActiveWaiting(ctx, "")
	if err != nil {
		return nil, err
	}
	stats.Summary.WaitingParties = len(waiting)

	floors, err := s.store.ListFloorsWithTables(ctx)
	if err != nil {
		return nil, err
	}
	stats.FloorStats = make([]FloorStat, 0, len(floors))
	for _, f := range floors {
		stats.FloorStats = append(stats.FloorStats, FloorStat{
			FloorID:     f.ID,
			FloorName:   f.Name,
			TotalTables: len(f.Tables),
		})
	}

	for _, size := range []models.TableSize{models.SizeSmall, models.SizeMedium, models.SizeLarge} {
		n, err := s.store.CountTablesBySize(ctx, size)
		if err != nil {
			return nil, err
		}
		stats.SizeStats[size] = n
	}

	s.writeCache(ctx, dashboardCacheKey, stats)
	return stats, nil
}

// Invalidate drops the cached payload; called on dashboardUpdated events.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.redis == nil || s.ttl <= 0 {
		return
	}
	_ = s.redis.Del(ctx, dashboardCacheKey).Err()
}

func (s *DashboardService) readCache(ctx context.Context, key string, out any) bool {
	if s.redis == nil || s.ttl <= 0 {
		return false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (s *DashboardService) writeCache(ctx context.Context, key string, val any) {
	if s.redis == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, key, data, s.ttl).Err()
}
