package student

import (
	"context"
	"database/sql"
	"errors"
)

// Student is a full student record with class details joined in.
type Student struct {
	ID            int64   `json:"id"`
	Code          string  `json:"student_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	DateOfBirth   *string `json:"date_of_birth,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	Address       *string `json:"address,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	ParentName    *string `json:"parent_guardian_name,omitempty"`
	ParentPhone   *string `json:"parent_guardian_phone,omitempty"`
	ParentEmail   *string `json:"parent_guardian_email,omitempty"`
	ClassID       *int64  `json:"class_id,omitempty"`
	ClassName     *string `json:"class_name,omitempty"`
	Section       *string `json:"section,omitempty"`
	AdmissionDate *string `json:"admission_date,omitempty"`
	Status        string  `json:"status"`
}

const selectColumns = `
	s.id, s.student_code, s.first_name, s.last_name, s.date_of_birth, s.gender,
	s.address, s.phone, s.parent_guardian_name, s.parent_guardian_phone,
	s.parent_guardian_email, s.class_id, c.class_name, c.section,
	s.admission_date, s.status`

// Repository persists students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.Code, &st.FirstName, &st.LastName, &st.DateOfBirth,
		&st.Gender, &st.Address, &st.Phone, &st.ParentName, &st.ParentPhone,
		&st.ParentEmail, &st.ClassID, &st.ClassName, &st.Section,
		&st.AdmissionDate, &st.Status)
	return st, err
}

// List returns active students ordered by name, optionally restricted to a
// class.
func (r *Repository) List(ctx context.Context, classID string) ([]Student, error) {
	query := `
		SELECT ` + selectColumns + `
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
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// Get returns a single student by id, nil when no row matches.
func (r *Repository) Get(ctx context.Context, id int64) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM students s
		LEFT JOIN classes c ON s.class_id = c.id
		WHERE s.id = $1
	`, id)
	st, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// Create inserts a new student with today's admission date and returns its id.
func (r *Repository) Create(ctx context.Context, st Student) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO students (
			student_code, first_name, last_name, date_of_birth, gender, address,
			phone, parent_guardian_name, parent_guardian_phone,
			parent_guardian_email, class_id, admission_date, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,CURRENT_DATE,'Active')
		RETURNING id
	`, st.Code, st.FirstName, st.LastName, st.DateOfBirth, st.Gender, st.Address,
		st.Phone, st.ParentName, st.ParentPhone, st.ParentEmail, st.ClassID).Scan(&id)
	return id, err
}

// Update overwrites a student's mutable fields. Returns false when the id
// does not exist.
func (r *Repository) Update(ctx context.Context, id int64, st Student) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET
			first_name = $2, last_name = $3, date_of_birth = $4, gender = $5,
			address = $6, phone = $7, parent_guardian_name = $8,
			parent_guardian_phone = $9, parent_guardian_email = $10,
			class_id = $11, status = $12
		WHERE id = $1
	`, id, st.FirstName, st.LastName, st.DateOfBirth, st.Gender, st.Address,
		st.Phone, st.ParentName, st.ParentPhone, st.ParentEmail, st.ClassID, st.Status)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// Deactivate soft-deletes a student by flipping status to Inactive. Returns
// false when the id does not exist.
func (r *Repository) Deactivate(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET status = 'Inactive' WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}
