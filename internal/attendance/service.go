package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// Marking failures exposed to callers.
var (
	ErrEmptyBatch    = errors.New("no attendance records provided")
	ErrInvalidStatus = errors.New("invalid attendance status")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrPersistence   = errors.New("storage failure")
)

const dateLayout = "2006-01-02"

// Store is the persistence surface the service needs.
type Store interface {
	ListForDate(ctx context.Context, date, classID string) ([]Row, error)
	RecordsForDate(ctx context.Context, date, classID string) ([]Record, error)
	RosterStudents(ctx context.Context, classID string) ([]Student, error)
	ReplaceForDate(ctx context.Context, date string, records []Record) (int, error)
	SummaryForDate(ctx context.Context, date string) (DailySummary, error)
	Statistics(ctx context.Context, startDate, endDate, classID string) ([]DayStats, error)
}

// Cache holds computed daily summaries. Implementations may be nil-safe no-ops.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Del(ctx context.Context, key string)
}

// Service coordinates attendance reads, marking, and summaries.
type Service struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
}

// NewService creates a service. cache may be nil to disable summary caching.
func NewService(store Store, cache Cache, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{store: store, cache: cache, cacheTTL: cacheTTL}
}

// ListForDate returns persisted attendance rows joined with student data.
func (s *Service) ListForDate(ctx context.Context, date, classID string) ([]Row, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, ErrInvalidDate
		}
	}
	rows, err := s.store.ListForDate(ctx, date, classID)
	if err != nil {
		log.Printf("attendance: list %s failed: %v", date, err)
		return nil, ErrPersistence
	}
	return rows, nil
}

// Roster returns the reconciled view for a date: every active student with
// their recorded status, defaulting to Present where no record exists.
func (s *Service) Roster(ctx context.Context, date, classID string) ([]RosterEntry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	roster, err := s.store.RosterStudents(ctx, classID)
	if err != nil {
		log.Printf("attendance: roster load failed: %v", err)
		return nil, ErrPersistence
	}
	existing, err := s.store.RecordsForDate(ctx, date, classID)
	if err != nil {
		log.Printf("attendance: records for %s failed: %v", date, err)
		return nil, ErrPersistence
	}
	return ReconcileForDate(roster, existing), nil
}

// Mark replaces attendance for the submitted students on the given date.
// The replace is transactional in the store; a partial write never survives.
func (s *Service) Mark(ctx context.Context, date string, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, ErrEmptyBatch
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, ErrInvalidDate
	}
	for _, rec := range records {
		if !rec.Status.Valid() {
			return 0, ErrInvalidStatus
		}
	}

	written, err := s.store.ReplaceForDate(ctx, date, records)
	if err != nil {
		log.Printf("attendance: replace for %s failed: %v", date, err)
		return 0, ErrPersistence
	}

	if s.cache != nil {
		s.cache.Del(ctx, summaryKey(date))
	}
	return written, nil
}

// TodaySummary returns the aggregate for the current day, served from cache
// when warm.
func (s *Service) TodaySummary(ctx context.Context) (DailySummary, error) {
	return s.SummaryFor(ctx, time.Now().Format(dateLayout))
}

// SummaryFor returns the aggregate for one date.
func (s *Service) SummaryFor(ctx context.Context, date string) (DailySummary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, summaryKey(date)); ok {
			var sum DailySummary
			if err := json.Unmarshal([]byte(cached), &sum); err == nil {
				return sum, nil
			}
		}
	}

	sum, err := s.store.SummaryForDate(ctx, date)
	if err != nil {
		log.Printf("attendance: summary for %s failed: %v", date, err)
		return DailySummary{}, ErrPersistence
	}

	if s.cache != nil {
		if payload, err := json.Marshal(sum); err == nil {
			s.cache.Set(ctx, summaryKey(date), string(payload), s.cacheTTL)
		}
	}
	return sum, nil
}

// RefreshSummary recomputes and caches the aggregate for a date. Used by the
// worker after attendance is marked.
func (s *Service) RefreshSummary(ctx context.Context, date string) error {
	sum, err := s.store.SummaryForDate(ctx, date)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if payload, err := json.Marshal(sum); err == nil {
			s.cache.Set(ctx, summaryKey(date), string(payload), s.cacheTTL)
		}
	}
	return nil
}

// Statistics returns per-day aggregates for a date range.
func (s *Service) Statistics(ctx context.Context, startDate, endDate, classID string) ([]DayStats, error) {
	if _, err := time.Parse(dateLayout, startDate); err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := time.Parse(dateLayout, endDate); err != nil {
		return nil, ErrInvalidDate
	}
	stats, err := s.store.Statistics(ctx, startDate, endDate, classID)
	if err != nil {
		log.Printf("attendance: statistics %s..%s failed: %v", startDate, endDate, err)
		return nil, ErrPersistence
	}
	return stats, nil
}

func summaryKey(date string) string {
	return "attendance:summary:" + date
}
