package fees

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("fee structure not found")
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrPersistence   = errors.New("storage failure")
)

// Store is the persistence surface the service needs.
type Store interface {
	ListStructures(ctx context.Context) ([]Structure, error)
	GetStructure(ctx context.Context, id int64) (*Structure, error)
	InsertPayment(ctx context.Context, studentID, feeStructureID int64, amount float64, method, receiptNumber string) (int64, error)
	ListPayments(ctx context.Context, status string) ([]Payment, error)
}

// Service exposes fee structures and payments to the HTTP boundary.
type Service struct {
	store Store
}

// NewService creates a service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListStructures returns all fee structures.
func (s *Service) ListStructures(ctx context.Context) ([]Structure, error) {
	structures, err := s.store.ListStructures(ctx)
	if err != nil {
		log.Printf("fees: list structures failed: %v", err)
		return nil, ErrPersistence
	}
	return structures, nil
}

// RecordPayment validates the fee structure, generates a receipt number, and
// persists the payment. Returns the payment id and receipt number.
func (s *Service) RecordPayment(ctx context.Context, studentID, feeStructureID int64, amount float64, method string) (int64, string, error) {
	if amount <= 0 {
		return 0, "", ErrInvalidAmount
	}
	structure, err := s.store.GetStructure(ctx, feeStructureID)
	if err != nil {
		log.Printf("fees: structure %d lookup failed: %v", feeStructureID, err)
		return 0, "", ErrPersistence
	}
	if structure == nil {
		return 0, "", ErrNotFound
	}

	receipt := newReceiptNumber()
	id, err := s.store.InsertPayment(ctx, studentID, feeStructureID, amount, method, receipt)
	if err != nil {
		log.Printf("fees: insert payment for student %d failed: %v", studentID, err)
		return 0, "", ErrPersistence
	}
	return id, receipt, nil
}

// ListPayments returns recorded payments, optionally filtered by status.
func (s *Service) ListPayments(ctx context.Context, status string) ([]Payment, error) {
	payments, err := s.store.ListPayments(ctx, status)
	if err != nil {
		log.Printf("fees: list payments failed: %v", err)
		return nil, ErrPersistence
	}
	return payments, nil
}

// newReceiptNumber builds a short unique receipt reference.
func newReceiptNumber() string {
	return "RCP-" + strings.ToUpper(uuid.NewString()[:8])
}
