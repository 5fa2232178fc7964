// Package sessions implements the poker-session resource: CRUD with per-user
// ownership enforcement, decimal-safe profit computation, and CSV export.
package sessions

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayout is the only accepted wire format for session dates.
const dateLayout = "2006-01-02"

// Date is a calendar date without time-of-day. It marshals as YYYY-MM-DD
// and scans from a DATE column.
type Date struct {
	time.Time
}

// ParseDate parses a strict YYYY-MM-DD string. Impossible calendar dates
// (month 13, day 32) fail like any other malformed input.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date in wire format.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// PokerSession is a cash-game record owned by exactly one user. Amounts are
// exact decimals; profit is derived at read time, never stored.
type PokerSession struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	SessionDate     Date            `json:"session_date"`
	DurationMinutes int             `json:"duration_minutes"`
	BuyInAmount     decimal.Decimal `json:"buy_in_amount"`
	RebuyAmount     decimal.Decimal `json:"rebuy_amount"`
	CashOutAmount   decimal.Decimal `json:"cash_out_amount"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SessionWithProfit is the response shape: the session fields flattened
// alongside the derived profit.
type SessionWithProfit struct {
	PokerSession
	Profit float64 `json:"profit"`
}

// WithProfit attaches the derived profit to a session.
func (s PokerSession) WithProfit() SessionWithProfit {
	return SessionWithProfit{
		PokerSession: s,
		Profit:       Profit(s.BuyInAmount, s.RebuyAmount, s.CashOutAmount),
	}
}

// Profit computes cash_out - (buy_in + rebuy) in exact decimal arithmetic,
// converting to floating point only for transport.
func Profit(buyIn, rebuy, cashOut decimal.Decimal) float64 {
	return cashOut.Sub(buyIn.Add(rebuy)).InexactFloat64()
}
