// Package auth handles authentication: registration and login, password
// hashing, token issuance and verification, and the request gate that turns
// a bearer token into an authenticated user id.
package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/poker-tracker-go/apperror"
	"github.com/user/poker-tracker-go/db"
)

// Service provides identity business logic over the users table.
type Service struct {
	pool   db.Pool
	hasher *PasswordHasher
}

// NewService creates an identity Service.
func NewService(pool db.Pool, hasher *PasswordHasher) *Service {
	return &Service{pool: pool, hasher: hasher}
}

const userColumns = `id, email, username, password_hash, cookie_consent, cookie_consent_date, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CookieConsent,
		&user.CookieConsentDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Register hashes the password and persists a new user with cookie consent
// defaulted to false. A uniqueness violation is mapped to a conflict naming
// the conflicting column when it can be determined.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to hash password", err)
	}

	query := `INSERT INTO users (email, username, password_hash)
              VALUES ($1, $2, $3)
              RETURNING ` + userColumns

	user, err := scanUser(s.pool.QueryRow(ctx, query, req.Email, req.Username, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch {
			case strings.Contains(pgErr.ConstraintName, "email"):
				return nil, apperror.NewConflictError("An account with this email already exists", nil)
			case strings.Contains(pgErr.ConstraintName, "username"):
				return nil, apperror.NewConflictError("This username is already taken", nil)
			default:
				return nil, apperror.NewConflictError("An account with these details already exists", nil)
			}
		}
		return nil, apperror.NewDatabaseError("Failed to create account", err)
	}

	return user, nil
}

// Login authenticates by exact email match and password verification. An
// unknown email and a wrong password produce the identical error so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, error) {
	// Email lookup is deliberately case-sensitive, matching stored behavior.
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, req.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("Invalid credentials", nil)
		}
		log.Printf("database error during login: %v", err)
		return nil, apperror.NewDatabaseError("Failed to look up user", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperror.NewAuthError("Invalid credentials", nil)
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to get user", err)
	}
	return user, nil
}

// ChangePassword re-verifies the old password before storing a hash of the
// new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		return apperror.NewAuthError("Current password is incorrect", nil)
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperror.NewInternalError("Failed to hash password", err)
	}

	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	if _, err := s.pool.Exec(ctx, query, newHash, time.Now().UTC(), userID); err != nil {
		return apperror.NewDatabaseError("Failed to change password", err)
	}
	return nil
}

// UpdateCookieConsent records the consent flag. Granting consent stamps the
// consent timestamp; revoking it clears the timestamp.
func (s *Service) UpdateCookieConsent(ctx context.Context, userID uuid.UUID, consent bool) (*User, error) {
	var consentDate *time.Time
	if consent {
		now := time.Now().UTC()
		consentDate = &now
	}

	query := `UPDATE users
              SET cookie_consent = $1, cookie_consent_date = $2, updated_at = $3
              WHERE id = $4
              RETURNING ` + userColumns

	user, err := scanUser(s.pool.QueryRow(ctx, query, consent, consentDate, time.Now().UTC(), userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to update cookie consent", err)
	}
	return user, nil
}
