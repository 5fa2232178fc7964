package sessions

// CreateSessionRequest is the payload for recording a session. The date is
// a string parsed strictly as YYYY-MM-DD by the service; amounts arrive as
// JSON numbers and are converted to exact decimals.
type CreateSessionRequest struct {
	SessionDate     string   `json:"session_date" validate:"required"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,min=1"`
	BuyInAmount     float64  `json:"buy_in_amount" validate:"min=0"`
	RebuyAmount     *float64 `json:"rebuy_amount" validate:"omitempty,min=0"`
	CashOutAmount   float64  `json:"cash_out_amount" validate:"min=0"`
	Notes           *string  `json:"notes"`
}

// UpdateSessionRequest is a partial update: every omitted field keeps its
// stored value.
type UpdateSessionRequest struct {
	SessionDate     *string  `json:"session_date"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,min=1"`
	BuyInAmount     *float64 `json:"buy_in_amount" validate:"omitempty,min=0"`
	RebuyAmount     *float64 `json:"rebuy_amount" validate:"omitempty,min=0"`
	CashOutAmount   *float64 `json:"cash_out_amount" validate:"omitempty,min=0"`
	Notes           *string  `json:"notes"`
}

// MessageResponse is a generic success payload.
type MessageResponse struct {
	Message string `json:"message"`
}
