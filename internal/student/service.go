package student

import (
	"context"
	"errors"
	"log"
)

var (
	ErrNotFound    = errors.New("student not found")
	ErrPersistence = errors.New("storage failure")
)

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context, classID string) ([]Student, error)
	Get(ctx context.Context, id int64) (*Student, error)
	Create(ctx context.Context, st Student) (int64, error)
	Update(ctx context.Context, id int64, st Student) (bool, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
}

// Service exposes student records to the HTTP boundary.
type Service struct {
	store Store
}

// NewService creates a service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns active students, optionally filtered by class.
func (s *Service) List(ctx context.Context, classID string) ([]Student, error) {
	students, err := s.store.List(ctx, classID)
	if err != nil {
		log.Printf("student: list failed: %v", err)
		return nil, ErrPersistence
	}
	return students, nil
}

// Get returns one student or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		log.Printf("student: get %d failed: %v", id, err)
		return Student{}, ErrPersistence
	}
	if st == nil {
		return Student{}, ErrNotFound
	}
	return *st, nil
}

// Create inserts a new student and returns its id.
func (s *Service) Create(ctx context.Context, st Student) (int64, error) {
	id, err := s.store.Create(ctx, st)
	if err != nil {
		log.Printf("student: create failed: %v", err)
		return 0, ErrPersistence
	}
	return id, nil
}

// Update overwrites a student's record or returns ErrNotFound.
func (s *Service) Update(ctx context.Context, id int64, st Student) error {
	ok, err := s.store.Update(ctx, id, st)
	if err != nil {
		log.Printf("student: update %d failed: %v", id, err)
		return ErrPersistence
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a student or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.Deactivate(ctx, id)
	if err != nil {
		log.Printf("student: delete %d failed: %v", id, err)
		return ErrPersistence
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
