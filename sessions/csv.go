package sessions

import (
	"fmt"
	"strings"
)

// csvHeader is the fixed export header row.
const csvHeader = "Date,Duration (hours),Buy-in,Rebuy,Cash Out,Profit/Loss,Notes"

// renderCSV renders sessions in row order. Duration is hours to one decimal
// place, profit to two; amounts keep their exact decimal representation.
func renderCSV(sessions []PokerSession) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')

	for _, s := range sessions {
		profit := Profit(s.BuyInAmount, s.RebuyAmount, s.CashOutAmount)
		durationHours := float64(s.DurationMinutes) / 60.0
		notes := ""
		if s.Notes != nil {
			notes = *s.Notes
		}

		fmt.Fprintf(&b, "%s,%.1f,%s,%s,%s,%.2f,%s\n",
			s.SessionDate.String(),
			durationHours,
			s.BuyInAmount.String(),
			s.RebuyAmount.String(),
			s.CashOutAmount.String(),
			profit,
			escapeCSVField(notes),
		)
	}

	return b.String()
}

// escapeCSVField wraps a field in double quotes, doubling internal quotes,
// if and only if it contains a comma, a double quote, or a newline. All
// other fields are emitted verbatim.
func escapeCSVField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}
