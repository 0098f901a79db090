package core

// Action classifies what the signal engine decided for a symbol this
// tick.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is the transient output of the signal engine: a classification
// plus a short human-readable reason. Signal carries no size or order
// information — that is the risk governor's and execution backend's job.
type Signal struct {
	Action Action
	Reason string
}

// Hold builds a hold Signal with the given reason.
func Hold(reason string) Signal {
	return Signal{Action: ActionHold, Reason: reason}
}

// Buy builds a buy Signal with the given reason.
func Buy(reason string) Signal {
	return Signal{Action: ActionBuy, Reason: reason}
}

// Sell builds a sell Signal with the given reason.
func Sell(reason string) Signal {
	return Signal{Action: ActionSell, Reason: reason}
}
