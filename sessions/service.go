package sessions

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/user/poker-tracker-go/apperror"
	"github.com/user/poker-tracker-go/db"
)

// Service provides poker-session business logic. Every query and mutation
// filters by (id, user_id) jointly, so a foreign session is indistinguishable
// from a nonexistent one.
type Service struct {
	pool db.Pool
	now  func() time.Time
}

// NewService creates a session Service.
func NewService(pool db.Pool) *Service {
	return &Service{pool: pool, now: time.Now}
}

const sessionColumns = `id, user_id, session_date, duration_minutes, buy_in_amount, rebuy_amount, cash_out_amount, notes, created_at, updated_at`

func scanSession(row pgx.Row) (*PokerSession, error) {
	var s PokerSession
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.SessionDate,
		&s.DurationMinutes,
		&s.BuyInAmount,
		&s.RebuyAmount,
		&s.CashOutAmount,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create records a new session for the owner. The date string must parse as
// strict YYYY-MM-DD; a missing rebuy defaults to zero.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateSessionRequest) (*PokerSession, error) {
	date, err := ParseDate(req.SessionDate)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid date format. Expected YYYY-MM-DD", nil)
	}

	// The handler validates this before calling; re-checked here so a direct
	// caller cannot persist a zero-length session.
	if req.DurationMinutes < 1 {
		return nil, apperror.NewBadRequestError("Duration must be at least 1 minute", nil)
	}

	rebuy := decimal.Zero
	if req.RebuyAmount != nil {
		rebuy = decimal.NewFromFloat(*req.RebuyAmount)
	}

	query := `INSERT INTO poker_sessions (user_id, session_date, duration_minutes, buy_in_amount, rebuy_amount, cash_out_amount, notes)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING ` + sessionColumns

	session, err := scanSession(s.pool.QueryRow(ctx, query,
		ownerID,
		date.Time,
		req.DurationMinutes,
		decimal.NewFromFloat(req.BuyInAmount),
		rebuy,
		decimal.NewFromFloat(req.CashOutAmount),
		req.Notes,
	))
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to create session", err)
	}
	return session, nil
}

// Get retrieves a session under the ownership filter.
func (s *Service) Get(ctx context.Context, sessionID, ownerID uuid.UUID) (*PokerSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM poker_sessions WHERE id = $1 AND user_id = $2`

	session, err := scanSession(s.pool.QueryRow(ctx, query, sessionID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Session not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to fetch session", err)
	}
	return session, nil
}

// List returns the owner's sessions, most recent date first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]PokerSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM poker_sessions WHERE user_id = $1 ORDER BY session_date DESC`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to fetch sessions", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// Update applies a partial update: it re-fetches the session under the
// ownership filter, merges the supplied fields over the stored values, and
// persists with a bumped update timestamp. Concurrent updates resolve
// last-writer-wins; there is no optimistic-concurrency token.
func (s *Service) Update(ctx context.Context, sessionID, ownerID uuid.UUID, req UpdateSessionRequest) (*PokerSession, error) {
	existing, err := s.Get(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	date := existing.SessionDate
	if req.SessionDate != nil {
		date, err = ParseDate(*req.SessionDate)
		if err != nil {
			return nil, apperror.NewBadRequestError("Invalid date format. Expected YYYY-MM-DD", nil)
		}
	}

	duration := existing.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	buyIn := existing.BuyInAmount
	if req.BuyInAmount != nil {
		buyIn = decimal.NewFromFloat(*req.BuyInAmount)
	}

	rebuy := existing.RebuyAmount
	if req.RebuyAmount != nil {
		rebuy = decimal.NewFromFloat(*req.RebuyAmount)
	}

	cashOut := existing.CashOutAmount
	if req.CashOutAmount != nil {
		cashOut = decimal.NewFromFloat(*req.CashOutAmount)
	}

	notes := existing.Notes
	if req.Notes != nil {
		notes = req.Notes
	}

	query := `UPDATE poker_sessions
              SET session_date = $1, duration_minutes = $2, buy_in_amount = $3, rebuy_amount = $4, cash_out_amount = $5, notes = $6, updated_at = $7
              WHERE id = $8 AND user_id = $9
              RETURNING ` + sessionColumns

	session, err := scanSession(s.pool.QueryRow(ctx, query,
		date.Time, duration, buyIn, rebuy, cashOut, notes, s.now().UTC(), sessionID, ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Session not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to update session", err)
	}
	return session, nil
}

// Delete removes a session under the ownership filter. Zero rows affected is
// reported as not-found, so a second delete of the same id fails even though
// the first succeeded.
func (s *Service) Delete(ctx context.Context, sessionID, ownerID uuid.UUID) error {
	query := `DELETE FROM poker_sessions WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, sessionID, ownerID)
	if err != nil {
		return apperror.NewDatabaseError("Failed to delete session", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Session not found", nil)
	}
	return nil
}

// rangeDays maps export time ranges to their day counts. "all" and an absent
// range mean no cutoff.
var rangeDays = map[string]int{
	"7days":  7,
	"30days": 30,
	"90days": 90,
	"1year":  365,
}

// Export renders the owner's sessions as CSV, oldest first, optionally
// bounded below by today minus the requested range. An unreadable dataset
// degrades to a header-only document; only an unrecognized range is an error.
func (s *Service) Export(ctx context.Context, ownerID uuid.UUID, timeRange string) (string, error) {
	var cutoff *Date
	switch {
	case timeRange == "" || timeRange == "all":
		// no lower bound
	default:
		days, ok := rangeDays[timeRange]
		if !ok {
			return "", apperror.NewBadRequestError("Invalid time_range. Valid options: 7days, 30days, 90days, 1year, all", nil)
		}
		t := s.now().UTC().AddDate(0, 0, -days)
		c := NewDate(t.Year(), t.Month(), t.Day())
		cutoff = &c
	}

	return renderCSV(s.exportRows(ctx, ownerID, cutoff)), nil
}

// exportRows fetches sessions ascending by date, with an optional inclusive
// lower bound. Storage failures degrade to an empty dataset.
func (s *Service) exportRows(ctx context.Context, ownerID uuid.UUID, cutoff *Date) []PokerSession {
	var (
		rows pgx.Rows
		err  error
	)
	if cutoff != nil {
		query := `SELECT ` + sessionColumns + ` FROM poker_sessions WHERE user_id = $1 AND session_date >= $2 ORDER BY session_date ASC`
		rows, err = s.pool.Query(ctx, query, ownerID, cutoff.Time)
	} else {
		query := `SELECT ` + sessionColumns + ` FROM poker_sessions WHERE user_id = $1 ORDER BY session_date ASC`
		rows, err = s.pool.Query(ctx, query, ownerID)
	}
	if err != nil {
		log.Printf("export query failed for user %s: %v", ownerID, err)
		return nil
	}
	defer rows.Close()

	sessions, err := collectSessions(rows)
	if err != nil {
		log.Printf("export scan failed for user %s: %v", ownerID, err)
		return nil
	}
	return sessions
}

func collectSessions(rows pgx.Rows) ([]PokerSession, error) {
	sessions := []PokerSession{}
	for rows.Next() {
		var s PokerSession
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.SessionDate,
			&s.DurationMinutes,
			&s.BuyInAmount,
			&s.RebuyAmount,
			&s.CashOutAmount,
			&s.Notes,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, apperror.NewDatabaseError("Failed to scan session", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("Failed to iterate sessions", err)
	}
	return sessions, nil
}
