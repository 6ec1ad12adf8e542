package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schoolms/internal/attendance"
	"schoolms/internal/auth"
	"schoolms/internal/fees"
	"schoolms/internal/queue"
	"schoolms/internal/student"
)

// Handler wires the domain services to gin routes.
type Handler struct {
	auth       *auth.Service
	students   *student.Service
	attendance *attendance.Service
	fees       *fees.Service
	events     queue.Queue // nil disables event publishing
}

// New creates a handler.
func New(authSvc *auth.Service, students *student.Service, att *attendance.Service, feeSvc *fees.Service, events queue.Queue) *Handler {
	return &Handler{
		auth:       authSvc,
		students:   students,
		attendance: att,
		fees:       feeSvc,
		events:     events,
	}
}

// ---------- Auth ----------

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a session token with the public
// identity view.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	token, identity, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": identity})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	RoleID   int64  `json:"role_id" binding:"required"`
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.RoleID)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "userId": id})
}

// ---------- Students ----------

// ListStudents returns active students, optionally filtered by class_id.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context(), c.Query("class_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if students == nil {
		students = []student.Student{}
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent returns one student by id.
func (h *Handler) GetStudent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	st, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, st)
}

type studentRequest struct {
	Code        string  `json:"student_id" binding:"required"`
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	ParentName  *string `json:"parent_guardian_name"`
	ParentPhone *string `json:"parent_guardian_phone"`
	ParentEmail *string `json:"parent_guardian_email"`
	ClassID     *int64  `json:"class_id"`
	Status      string  `json:"status"`
}

func (r studentRequest) toModel() student.Student {
	return student.Student{
		Code:        r.Code,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
		Address:     r.Address,
		Phone:       r.Phone,
		ParentName:  r.ParentName,
		ParentPhone: r.ParentPhone,
		ParentEmail: r.ParentEmail,
		ClassID:     r.ClassID,
		Status:      r.Status,
	}
}

// CreateStudent admits a new student.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.students.Create(c.Request.Context(), req.toModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Student created successfully", "studentId": id})
}

// UpdateStudent overwrites a student record.
func (h *Handler) UpdateStudent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.students.Update(c.Request.Context(), id, req.toModel()); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student updated successfully"})
}

// DeleteStudent soft-deletes a student.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}

// ---------- Attendance ----------

// ListAttendance returns persisted attendance rows filtered by date/class.
func (h *Handler) ListAttendance(c *gin.Context) {
	rows, err := h.attendance.ListForDate(c.Request.Context(), c.Query("date"), c.Query("class_id"))
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if rows == nil {
		rows = []attendance.Row{}
	}
	c.JSON(http.StatusOK, rows)
}

// Roster returns the reconciled per-student view for a date, with the
// summary the UI shows above it.
func (h *Handler) Roster(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	entries, err := h.attendance.Roster(c.Request.Context(), date, c.Query("class_id"))
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":    date,
		"roster":  entries,
		"summary": attendance.ComputeSummary(entries),
	})
}

type markAttendanceRequest struct {
	Date    string `json:"date" binding:"required"`
	Records []struct {
		StudentID int64  `json:"student_id" binding:"required"`
		Status    string `json:"status" binding:"required"`
		Remarks   string `json:"remarks"`
	} `json:"attendance_records" binding:"required"`
}

// MarkAttendance replaces attendance for the submitted students on a date.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No attendance records provided"})
		return
	}

	records := make([]attendance.Record, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, attendance.Record{
			StudentID: r.StudentID,
			Date:      req.Date,
			Status:    attendance.Status(r.Status),
			Remarks:   r.Remarks,
		})
	}

	written, err := h.attendance.Mark(c.Request.Context(), req.Date, records)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrEmptyBatch),
			errors.Is(err, attendance.ErrInvalidStatus),
			errors.Is(err, attendance.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark attendance"})
		}
		return
	}

	if h.events != nil {
		msg := queue.Message{Type: queue.TypeAttendanceMarked, Body: []byte(req.Date)}
		if err := h.events.Publish(context.WithoutCancel(c.Request.Context()), msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance marked successfully", "recordsMarked": written})
}

// TodaySummary returns the aggregate for the current day.
func (h *Handler) TodaySummary(c *gin.Context) {
	sum, err := h.attendance.TodaySummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// AttendanceStatistics returns per-day aggregates for a date range.
func (h *Handler) AttendanceStatistics(c *gin.Context) {
	stats, err := h.attendance.Statistics(c.Request.Context(),
		c.Query("start_date"), c.Query("end_date"), c.Query("class_id"))
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required as YYYY-MM-DD"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if stats == nil {
		stats = []attendance.DayStats{}
	}
	c.JSON(http.StatusOK, stats)
}

// ---------- Fees ----------

// ListFeeStructures returns all fee structures.
func (h *Handler) ListFeeStructures(c *gin.Context) {
	structures, err := h.fees.ListStructures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if structures == nil {
		structures = []fees.Structure{}
	}
	c.JSON(http.StatusOK, structures)
}

// ListFeePayments returns recorded payments.
func (h *Handler) ListFeePayments(c *gin.Context) {
	payments, err := h.fees.ListPayments(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if payments == nil {
		payments = []fees.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

type paymentRequest struct {
	StudentID      int64   `json:"student_id" binding:"required"`
	FeeStructureID int64   `json:"fee_structure_id" binding:"required"`
	Amount         float64 `json:"amount" binding:"required"`
	PaymentMethod  string  `json:"payment_method" binding:"required"`
}

// RecordFeePayment records a payment and returns its receipt number.
func (h *Handler) RecordFeePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, receipt, err := h.fees.RecordPayment(c.Request.Context(), req.StudentID, req.FeeStructureID, req.Amount, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, fees.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, fees.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Fee structure not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Payment recorded successfully", "paymentId": id, "receiptNumber": receipt})
}
