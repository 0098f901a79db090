package core

// RiskState is the risk governor's own state: today's UTC calendar date,
// the equity recorded at day-open, and whether trading has been halted
// for the remainder of the day. Halted latches true until the UTC date
// changes.
type RiskState struct {
	Date          string // YYYY-MM-DD, UTC
	DayOpenEquity float64
	HasDayOpen    bool
	Halted        bool
}
