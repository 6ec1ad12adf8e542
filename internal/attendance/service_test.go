package attendance

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordKey struct {
	studentID int64
	date      string
}

// mockStore keeps attendance in a map keyed by (student, date), which makes
// the one-record-per-student-per-day invariant structural.
type mockStore struct {
	students     []Student
	records      map[recordKey]Record
	replaceCalls int
	failReplace  bool
	failAll      bool
}

func newMockStore(students ...Student) *mockStore {
	return &mockStore{students: students, records: make(map[recordKey]Record)}
}

func (m *mockStore) ListForDate(_ context.Context, date, _ string) ([]Row, error) {
	if m.failAll {
		return nil, errors.New("connection refused")
	}
	var rows []Row
	for key, rec := range m.records {
		if date == "" || key.date == date {
			rows = append(rows, Row{StudentID: rec.StudentID, Date: key.date, Status: rec.Status, Remarks: rec.Remarks})
		}
	}
	return rows, nil
}

func (m *mockStore) RecordsForDate(_ context.Context, date, _ string) ([]Record, error) {
	if m.failAll {
		return nil, errors.New("connection refused")
	}
	var recs []Record
	for key, rec := range m.records {
		if key.date == date {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (m *mockStore) RosterStudents(_ context.Context, _ string) ([]Student, error) {
	if m.failAll {
		return nil, errors.New("connection refused")
	}
	return m.students, nil
}

func (m *mockStore) ReplaceForDate(_ context.Context, date string, records []Record) (int, error) {
	m.replaceCalls++
	if m.failReplace || m.failAll {
		return 0, errors.New("connection refused")
	}
	for _, rec := range records {
		m.records[recordKey{rec.StudentID, date}] = Record{
			StudentID: rec.StudentID,
			Date:      date,
			Status:    rec.Status,
			Remarks:   rec.Remarks,
		}
	}
	return len(records), nil
}

func (m *mockStore) SummaryForDate(_ context.Context, date string) (DailySummary, error) {
	if m.failAll {
		return DailySummary{}, errors.New("connection refused")
	}
	sum := DailySummary{TotalStudents: len(m.students)}
	for key, rec := range m.records {
		if key.date != date {
			continue
		}
		switch rec.Status {
		case StatusPresent:
			sum.PresentCount++
		case StatusAbsent:
			sum.AbsentCount++
		case StatusLate:
			sum.LateCount++
		}
	}
	return sum, nil
}

func (m *mockStore) Statistics(_ context.Context, _, _, _ string) ([]DayStats, error) {
	if m.failAll {
		return nil, errors.New("connection refused")
	}
	return nil, nil
}

type mockCache struct {
	data map[string]string
	dels []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mockCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.data[key] = value
}

func (c *mockCache) Del(_ context.Context, key string) {
	delete(c.data, key)
	c.dels = append(c.dels, key)
}

func TestMarkEmptyBatch(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, time.Minute)

	_, err := svc.Mark(context.Background(), "2026-03-02", nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if store.replaceCalls != 0 {
		t.Error("empty batch reached the store")
	}
}

func TestMarkInvalidStatus(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, time.Minute)

	_, err := svc.Mark(context.Background(), "2026-03-02", []Record{
		{StudentID: 1, Status: "Sleeping"},
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if store.replaceCalls != 0 {
		t.Error("invalid batch reached the store")
	}
}

func TestMarkInvalidDate(t *testing.T) {
	svc := NewService(newMockStore(), nil, time.Minute)
	_, err := svc.Mark(context.Background(), "02-03-2026", []Record{
		{StudentID: 1, Status: StatusPresent},
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMarkThenFetchReturnsExactlyTheReplaceSet(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, time.Minute)
	date := "2026-03-02"

	// Pre-existing record for S1 that the mark must replace.
	store.records[recordKey{1, date}] = Record{StudentID: 1, Date: date, Status: StatusPresent}
	// Record on another date that must be untouched.
	store.records[recordKey{1, "2026-03-01"}] = Record{StudentID: 1, Date: "2026-03-01", Status: StatusLate}

	written, err := svc.Mark(context.Background(), date, []Record{
		{StudentID: 1, Status: StatusAbsent},
		{StudentID: 2, Status: StatusPresent},
	})
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if written != 2 {
		t.Errorf("expected 2 records written, got %d", written)
	}

	recs, err := store.RecordsForDate(context.Background(), date, "")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected exactly 2 records for %s, got %d", date, len(recs))
	}
	byStudent := map[int64]Status{}
	for _, rec := range recs {
		byStudent[rec.StudentID] = rec.Status
	}
	if byStudent[1] != StatusAbsent || byStudent[2] != StatusPresent {
		t.Errorf("unexpected replace result: %v", byStudent)
	}
	if store.records[recordKey{1, "2026-03-01"}].Status != StatusLate {
		t.Error("record on a different date was modified")
	}
}

func TestMarkInvalidatesCachedSummary(t *testing.T) {
	store := newMockStore()
	cache := newMockCache()
	cache.data[summaryKey("2026-03-02")] = `{"total_students":10}`
	svc := NewService(store, cache, time.Minute)

	_, err := svc.Mark(context.Background(), "2026-03-02", []Record{
		{StudentID: 1, Status: StatusPresent},
	})
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if _, ok := cache.data[summaryKey("2026-03-02")]; ok {
		t.Error("cached summary not invalidated after mark")
	}
}

func TestMarkStorageFailure(t *testing.T) {
	store := newMockStore()
	store.failReplace = true
	svc := NewService(store, nil, time.Minute)

	_, err := svc.Mark(context.Background(), "2026-03-02", []Record{
		{StudentID: 1, Status: StatusPresent},
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestRosterReconcilesAgainstStore(t *testing.T) {
	store := newMockStore(
		Student{ID: 1, Code: "S1", FirstName: "Aanya", LastName: "Rao"},
		Student{ID: 2, Code: "S2", FirstName: "Bilal", LastName: "Khan"},
	)
	date := "2026-03-02"
	store.records[recordKey{1, date}] = Record{StudentID: 1, Date: date, Status: StatusLate, Remarks: "bus delay"}
	svc := NewService(store, nil, time.Minute)

	entries, err := svc.Roster(context.Background(), date, "")
	if err != nil {
		t.Fatalf("roster failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != StatusLate || entries[0].Remarks != "bus delay" {
		t.Errorf("student 1: got %s/%q", entries[0].Status, entries[0].Remarks)
	}
	if entries[1].Status != StatusPresent {
		t.Errorf("student 2: expected default Present, got %s", entries[1].Status)
	}
}

func TestSummaryForUsesCache(t *testing.T) {
	store := newMockStore(Student{ID: 1}, Student{ID: 2})
	cache := newMockCache()
	svc := NewService(store, cache, time.Minute)
	date := "2026-03-02"
	store.records[recordKey{1, date}] = Record{StudentID: 1, Date: date, Status: StatusPresent}

	first, err := svc.SummaryFor(context.Background(), date)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if first.PresentCount != 1 || first.TotalStudents != 2 {
		t.Fatalf("unexpected summary: %+v", first)
	}

	// Mutate the store behind the cache; a warm read must not see it.
	store.records[recordKey{2, date}] = Record{StudentID: 2, Date: date, Status: StatusPresent}
	second, err := svc.SummaryFor(context.Background(), date)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if second.PresentCount != 1 {
		t.Errorf("expected cached summary, got %+v", second)
	}
}

func TestRefreshSummaryRepopulatesCache(t *testing.T) {
	store := newMockStore(Student{ID: 1})
	cache := newMockCache()
	svc := NewService(store, cache, time.Minute)
	date := "2026-03-02"
	store.records[recordKey{1, date}] = Record{StudentID: 1, Date: date, Status: StatusAbsent}

	if err := svc.RefreshSummary(context.Background(), date); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, ok := cache.data[summaryKey(date)]; !ok {
		t.Error("refresh did not populate the cache")
	}

	sum, err := svc.SummaryFor(context.Background(), date)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if sum.AbsentCount != 1 {
		t.Errorf("unexpected summary after refresh: %+v", sum)
	}
}

func TestStatisticsRequiresDates(t *testing.T) {
	svc := NewService(newMockStore(), nil, time.Minute)
	if _, err := svc.Statistics(context.Background(), "", "2026-03-02", ""); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate for missing start, got %v", err)
	}
	if _, err := svc.Statistics(context.Background(), "2026-03-01", "bad", ""); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate for bad end, got %v", err)
	}
}
