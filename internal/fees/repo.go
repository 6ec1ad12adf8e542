package fees

import (
	"context"
	"database/sql"
)

// Structure is a fee schedule entry for a class.
type Structure struct {
	ID           int64   `json:"id"`
	FeeType      string  `json:"fee_type"`
	Amount       float64 `json:"amount"`
	ClassID      *int64  `json:"class_id,omitempty"`
	ClassName    *string `json:"class_name,omitempty"`
	Section      *string `json:"section,omitempty"`
	AcademicYear string  `json:"academic_year"`
}

// Payment is a recorded fee payment joined with student and fee type.
type Payment struct {
	ID             int64   `json:"id"`
	StudentID      int64   `json:"student_id"`
	StudentName    string  `json:"student_name"`
	StudentCode    string  `json:"student_code"`
	FeeStructureID int64   `json:"fee_structure_id"`
	FeeType        string  `json:"fee_type"`
	Amount         float64 `json:"amount"`
	PaymentDate    string  `json:"payment_date"`
	PaymentMethod  string  `json:"payment_method"`
	ReceiptNumber  string  `json:"receipt_number"`
	Status         string  `json:"status"`
}

// Repository persists fee data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListStructures returns fee structures joined with class details.
func (r *Repository) ListStructures(ctx context.Context) ([]Structure, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.fee_type, f.amount, f.class_id, c.class_name, c.section, f.academic_year
		FROM fee_structures f
		LEFT JOIN classes c ON f.class_id = c.id
		ORDER BY f.fee_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Structure
	for rows.Next() {
		var st Structure
		if err := rows.Scan(&st.ID, &st.FeeType, &st.Amount, &st.ClassID, &st.ClassName, &st.Section, &st.AcademicYear); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// GetStructure returns a single fee structure, nil when no row matches.
func (r *Repository) GetStructure(ctx context.Context, id int64) (*Structure, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT f.id, f.fee_type, f.amount, f.class_id, c.class_name, c.section, f.academic_year
		FROM fee_structures f
		LEFT JOIN classes c ON f.class_id = c.id
		WHERE f.id = $1
	`, id)
	var st Structure
	if err := row.Scan(&st.ID, &st.FeeType, &st.Amount, &st.ClassID, &st.ClassName, &st.Section, &st.AcademicYear); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// InsertPayment records a payment and returns its id.
func (r *Repository) InsertPayment(ctx context.Context, studentID, feeStructureID int64, amount float64, method, receiptNumber string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO fee_payments (student_id, fee_structure_id, amount, payment_date, payment_method, receipt_number, status)
		VALUES ($1, $2, $3, CURRENT_DATE, $4, $5, 'Paid')
		RETURNING id
	`, studentID, feeStructureID, amount, method, receiptNumber).Scan(&id)
	return id, err
}

// ListPayments returns payments joined with student and fee type, newest
// first, optionally filtered by status.
func (r *Repository) ListPayments(ctx context.Context, status string) ([]Payment, error) {
	query := `
		SELECT p.id, p.student_id, s.first_name || ' ' || s.last_name, s.student_code,
		       p.fee_structure_id, f.fee_type, p.amount, p.payment_date,
		       p.payment_method, p.receipt_number, p.status
		FROM fee_payments p
		JOIN students s ON p.student_id = s.id
		JOIN fee_structures f ON p.fee_structure_id = f.id`
	args := []any{}
	if status != "" {
		query += " WHERE p.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY p.payment_date DESC, p.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.StudentID, &p.StudentName, &p.StudentCode,
			&p.FeeStructureID, &p.FeeType, &p.Amount, &p.PaymentDate,
			&p.PaymentMethod, &p.ReceiptNumber, &p.Status); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
