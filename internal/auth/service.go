package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Login and registration failures exposed to callers. Storage detail is
// logged internally and never surfaced.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrPersistence        = errors.New("storage failure")
)

// User is a credential store row. The password hash never leaves this package.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// Identity is the public view of an authenticated user.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserStore is the credential store the service reads and writes.
type UserStore interface {
	// FindActiveByUsername returns nil, nil when no active user matches.
	FindActiveByUsername(ctx context.Context, username string) (*User, error)
	// UsernameOrEmailExists matches case-sensitively across active and inactive users.
	UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, username, email, passwordHash string, roleID int64) (int64, error)
}

// Service implements the login/register protocol over a credential store.
type Service struct {
	store      UserStore
	issuer     string
	signingKey string
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates an auth service.
func NewService(store UserStore, issuer, signingKey string, tokenTTL time.Duration, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		store:      store,
		issuer:     issuer,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Login verifies a credential pair and issues a session token. Unknown
// username, inactive user, and wrong password all fail with the same
// ErrInvalidCredentials so callers cannot enumerate usernames.
func (s *Service) Login(ctx context.Context, username, password string) (string, Identity, error) {
	user, err := s.store.FindActiveByUsername(ctx, username)
	if err != nil {
		log.Printf("auth: lookup %q failed: %v", username, err)
		return "", Identity{}, ErrPersistence
	}
	if user == nil {
		return "", Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", Identity{}, ErrInvalidCredentials
	}

	token, _, err := Issue(user.ID, user.Role, s.issuer, s.signingKey, s.tokenTTL)
	if err != nil {
		log.Printf("auth: token issue for user %d failed: %v", user.ID, err)
		return "", Identity{}, ErrPersistence
	}

	return token, Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

// Register creates a new user. Username and email must be unused by any
// user, active or inactive. The password is hashed before the insert, so a
// hash failure leaves no partial row behind.
func (s *Service) Register(ctx context.Context, username, email, password string, roleID int64) (int64, error) {
	exists, err := s.store.UsernameOrEmailExists(ctx, username, email)
	if err != nil {
		log.Printf("auth: duplicate check for %q failed: %v", username, err)
		return 0, ErrPersistence
	}
	if exists {
		return 0, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		log.Printf("auth: hash for %q failed: %v", username, err)
		return 0, ErrPersistence
	}

	id, err := s.store.Create(ctx, username, email, string(hash), roleID)
	if err != nil {
		log.Printf("auth: create %q failed: %v", username, err)
		return 0, ErrPersistence
	}
	return id, nil
}
