package attendance

import (
	"context"
	"database/sql"
	"fmt"
)

// Row is a persisted attendance record joined with its student and class,
// as returned by the fetch endpoint.
type Row struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
	Remarks   string `json:"remarks"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Code      string `json:"student_code"`
	ClassName string `json:"class_name"`
	Section   string `json:"section"`
}

// DailySummary is the SQL aggregate over one day's attendance.
type DailySummary struct {
	TotalStudents int     `json:"total_students"`
	PresentCount  int     `json:"present_count"`
	AbsentCount   int     `json:"absent_count"`
	LateCount     int     `json:"late_count"`
	Percentage    float64 `json:"percentage"`
}

// DayStats is one row of the date-range statistics report.
type DayStats struct {
	Date          string  `json:"attendance_date"`
	TotalStudents int     `json:"total_students"`
	PresentCount  int     `json:"present_count"`
	AbsentCount   int     `json:"absent_count"`
	LateCount     int     `json:"late_count"`
	Percentage    float64 `json:"percentage"`
}

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListForDate returns attendance rows joined with student and class data,
// optionally filtered by date and class, ordered by student name.
func (r *Repository) ListForDate(ctx context.Context, date, classID string) ([]Row, error) {
	query := `
		SELECT a.id, a.student_id, a.date, a.status, COALESCE(a.remarks, ''),
		       s.first_name, s.last_name, s.student_code, c.class_name, c.section
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		JOIN classes c ON s.class_id = c.id`
	args := []any{}
	clauses := []string{}
	if date != "" {
		clauses = append(clauses, "a.date = $"+itoa(len(args)+1))
		args = append(args, date)
	}
	if classID != "" {
		clauses = append(clauses, "s.class_id = $"+itoa(len(args)+1))
		args = append(args, classID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY s.first_name, s.last_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.StudentID, &row.Date, &row.Status, &row.Remarks,
			&row.FirstName, &row.LastName, &row.Code, &row.ClassName, &row.Section); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// RecordsForDate returns the bare attendance records for a date, optionally
// restricted to a class. Input to reconciliation.
func (r *Repository) RecordsForDate(ctx context.Context, date, classID string) ([]Record, error) {
	query := `
		SELECT a.student_id, a.date, a.status, COALESCE(a.remarks, '')
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		WHERE a.date = $1`
	args := []any{date}
	if classID != "" {
		query += " AND s.class_id = $2"
		args = append(args, classID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.StudentID, &rec.Date, &rec.Status, &rec.Remarks); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// RosterStudents returns active students eligible for attendance, ordered by
// name, optionally restricted to a class.
func (r *Repository) RosterStudents(ctx context.Context, classID string) ([]Student, error) {
	query := `
		SELECT s.id, s.student_code, s.first_name, s.last_name,
		       COALESCE(c.class_name, ''), COALESCE(c.section, '')
		FROM students s
		LEFT JOIN classes c ON s.class_id = c.id
		WHERE s.status = 'Active'`
	args := []any{}
	if classID != "" {
		query += " AND s.class_id = $1"
		args = append(args, classID)
	}
	query += " ORDER BY s.first_name, s.last_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Code, &st.FirstName, &st.LastName, &st.ClassName, &st.Section); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// ReplaceForDate deletes any records for the submitted student ids on the
// given date and inserts the new set, all in one transaction. Records for
// students outside the set are untouched. Returns the number of rows
// written.
func (r *Repository) ReplaceForDate(ctx context.Context, date string, records []Record) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders := make([]string, len(records))
	args := []any{date}
	for i, rec := range records {
		placeholders[i] = "$" + itoa(i+2)
		args = append(args, rec.StudentID)
	}
	deleteQuery := "DELETE FROM attendance WHERE date = $1 AND student_id IN (" +
		joinClauses(placeholders, ", ") + ")"
	if _, err := tx.ExecContext(ctx, deleteQuery, args...); err != nil {
		return 0, err
	}

	written := 0
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attendance (student_id, date, status, remarks)
			VALUES ($1, $2, $3, $4)
		`, rec.StudentID, date, rec.Status, nullIfEmpty(rec.Remarks)); err != nil {
			return 0, err
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

// SummaryForDate aggregates one day's attendance over all active students.
// Students without a record count toward the total but not toward any
// status bucket.
func (r *Repository) SummaryForDate(ctx context.Context, date string) (DailySummary, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN a.status = 'Late' THEN 1 ELSE 0 END), 0),
		       COALESCE(ROUND(SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END) * 100.0 / NULLIF(COUNT(*), 0), 2), 0)
		FROM students s
		LEFT JOIN attendance a ON s.id = a.student_id AND a.date = $1
		WHERE s.status = 'Active'
	`, date)
	var sum DailySummary
	if err := row.Scan(&sum.TotalStudents, &sum.PresentCount, &sum.AbsentCount, &sum.LateCount, &sum.Percentage); err != nil {
		return DailySummary{}, err
	}
	return sum, nil
}

// Statistics returns per-day aggregates for a date range, optionally
// restricted to a class.
func (r *Repository) Statistics(ctx context.Context, startDate, endDate, classID string) ([]DayStats, error) {
	query := `
		SELECT a.date,
		       COUNT(*),
		       SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN a.status = 'Late' THEN 1 ELSE 0 END),
		       ROUND(SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2)
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		WHERE a.date BETWEEN $1 AND $2`
	args := []any{startDate, endDate}
	if classID != "" {
		query += " AND s.class_id = $3"
		args = append(args, classID)
	}
	query += " GROUP BY a.date ORDER BY a.date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []DayStats
	for rows.Next() {
		var d DayStats
		if err := rows.Scan(&d.Date, &d.TotalStudents, &d.PresentCount, &d.AbsentCount, &d.LateCount, &d.Percentage); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
