package config

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/cryptocore/core"
)

// ValidationError represents one configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a collection of validation errors, returned
// together so a user can fix every problem in one pass.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("config: validation failed with %d error(s):\n", len(ve)))
	for i, e := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, e.Field, e.Message))
	}
	return sb.String()
}

// Validate checks every configuration section. All errors are
// collected and returned together.
func (c *Config) Validate() error {
	var errs ValidationErrors
	errs = append(errs, c.validateMode()...)
	errs = append(errs, c.validateSymbols()...)
	errs = append(errs, c.validateStrategy()...)
	errs = append(errs, c.validateRisk()...)
	errs = append(errs, c.validatePaper()...)
	errs = append(errs, c.validateRuntime()...)
	errs = append(errs, c.validateExchangeCredentials()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateMode() ValidationErrors {
	if c.Mode != "paper" && c.Mode != "live" {
		return ValidationErrors{{Field: "mode", Message: fmt.Sprintf("must be 'paper' or 'live', got %q", c.Mode)}}
	}
	return nil
}

// validSymbol checks the BASE/QUOTE grammar: both halves uppercase and
// non-empty.
func validSymbol(s string) bool {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return parts[0] == strings.ToUpper(parts[0]) && parts[1] == strings.ToUpper(parts[1])
}

func (c *Config) validateSymbols() ValidationErrors {
	var errs ValidationErrors
	if len(c.Symbols) == 0 {
		errs = append(errs, ValidationError{Field: "symbols", Message: "at least one symbol is required"})
	}

	quotes := make(map[string]bool)
	for _, s := range c.Symbols {
		if !validSymbol(s) {
			errs = append(errs, ValidationError{Field: "symbols", Message: fmt.Sprintf("%q must be of the form BASE/QUOTE in uppercase", s)})
			continue
		}
		quotes[strings.SplitN(s, "/", 2)[1]] = true
	}
	if len(quotes) > 1 {
		errs = append(errs, ValidationError{Field: "symbols", Message: "all symbols must share the same quote currency"})
	}
	return errs
}

func (c *Config) validateStrategy() ValidationErrors {
	var errs ValidationErrors
	if _, err := core.ParseTimeframeSeconds(c.Strategy.Timeframe); err != nil {
		errs = append(errs, ValidationError{Field: "strategy.timeframe", Message: err.Error()})
	}
	if c.Strategy.OHLCVLimit < 50 {
		errs = append(errs, ValidationError{Field: "strategy.ohlcv_limit", Message: "must be >= 50"})
	}
	return errs
}

func fractionField(field string, v float64, errs *ValidationErrors) {
	if v <= 0 || v > 1 {
		*errs = append(*errs, ValidationError{Field: field, Message: fmt.Sprintf("must be in (0, 1], got %v", v)})
	}
}

func (c *Config) validateRisk() ValidationErrors {
	var errs ValidationErrors
	if c.Risk.MaxPositionPct < 0 || c.Risk.MaxPositionPct > 1 {
		errs = append(errs, ValidationError{Field: "risk.max_position_pct", Message: fmt.Sprintf("must be in [0, 1], got %v", c.Risk.MaxPositionPct)})
	}
	fractionField("risk.stop_loss_pct", c.Risk.StopLossPct, &errs)
	fractionField("risk.take_profit_pct", c.Risk.TakeProfitPct, &errs)
	fractionField("risk.daily_drawdown_limit_pct", c.Risk.DailyDrawdownLimitPct, &errs)
	return errs
}

func (c *Config) validatePaper() ValidationErrors {
	var errs ValidationErrors
	if c.Paper.StartingCashUSDT <= 0 {
		errs = append(errs, ValidationError{Field: "paper.starting_cash_usdt", Message: "must be positive"})
	}
	if c.Paper.FeePct < 0 || c.Paper.FeePct > 0.01 {
		errs = append(errs, ValidationError{Field: "paper.fee_pct", Message: fmt.Sprintf("must be in [0, 0.01], got %v", c.Paper.FeePct)})
	}
	return errs
}

func (c *Config) validateRuntime() ValidationErrors {
	var errs ValidationErrors
	if c.Runtime.PollIntervalSeconds <= 0 {
		errs = append(errs, ValidationError{Field: "runtime.poll_interval_seconds", Message: "must be positive"})
	}
	return errs
}

func (c *Config) validateExchangeCredentials() ValidationErrors {
	if c.Mode != "live" {
		return nil
	}
	var errs ValidationErrors
	if c.Exchange.APIKey == "" {
		errs = append(errs, ValidationError{Field: "exchange.api_key", Message: "required in live mode"})
	}
	if c.Exchange.APISecret == "" {
		errs = append(errs, ValidationError{Field: "exchange.api_secret", Message: "required in live mode"})
	}
	return errs
}
