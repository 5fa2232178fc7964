package sessions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeCSVField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "good run", "good run"},
		{"empty", "", ""},
		{"comma", "ups, downs", `"ups, downs"`},
		{"quote", `he said "fold"`, `"he said ""fold"""`},
		{"newline", "line one\nline two", "\"line one\nline two\""},
		{"quote and comma", `"all-in", twice`, `"""all-in"", twice"`},
		{"semicolons pass through", "a;b;c", "a;b;c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeCSVField(tt.in))
		})
	}
}

func TestRenderCSV_Empty(t *testing.T) {
	assert.Equal(t, csvHeader+"\n", renderCSV(nil))
	assert.Equal(t, csvHeader+"\n", renderCSV([]PokerSession{}))
}

func TestRenderCSV_Rows(t *testing.T) {
	notes := "loose table, big pots"
	sessions := []PokerSession{
		{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			SessionDate:     NewDate(2026, time.March, 10),
			DurationMinutes: 90,
			BuyInAmount:     decimal.RequireFromString("100.50"),
			RebuyAmount:     decimal.RequireFromString("25.25"),
			CashOutAmount:   decimal.RequireFromString("300.00"),
			Notes:           &notes,
		},
		{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			SessionDate:     NewDate(2026, time.March, 11),
			DurationMinutes: 45,
			BuyInAmount:     decimal.NewFromInt(200),
			RebuyAmount:     decimal.Zero,
			CashOutAmount:   decimal.NewFromInt(150),
		},
	}

	got := renderCSV(sessions)
	lines := splitLines(t, got)
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Duration (hours),Buy-in,Rebuy,Cash Out,Profit/Loss,Notes", lines[0])
	assert.Equal(t, `2026-03-10,1.5,100.5,25.25,300,174.25,"loose table, big pots"`, lines[1])
	// Nil notes render as an empty trailing field; a loss keeps its sign.
	assert.Equal(t, "2026-03-11,0.8,200,0,150,-50.00,", lines[2])
}

func splitLines(t *testing.T, s string) []string {
	t.Helper()
	require.NotEmpty(t, s)
	require.Equal(t, byte('\n'), s[len(s)-1])
	trimmed := s[:len(s)-1]
	var lines []string
	start := 0
	inQuotes := false
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				lines = append(lines, trimmed[start:i])
				start = i + 1
			}
		}
	}
	return append(lines, trimmed[start:])
}
