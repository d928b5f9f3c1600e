package arima

import (
	"fmt"
)

// Order is the (p,d,q)(P,D,Q)[m] specification of a seasonal ARIMA model
type Order struct {
	P int // autoregressive
	D int // differencing
	Q int // moving average

	SP int // seasonal autoregressive
	SD int // seasonal differencing
	SQ int // seasonal moving average

	M int // season length, 0 or 1 when non-seasonal
}

// Validate checks for negative orders and for seasonal terms without a season length
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 0 {
		return fmt.Errorf("%s has a negative term, %w", o, ErrInvalidOrder)
	}
	if o.M < 2 && (o.SP > 0 || o.SD > 0 || o.SQ > 0) {
		return fmt.Errorf("%s has seasonal terms with season length %d, %w", o, o.M, ErrInvalidOrder)
	}
	return nil
}

// Seasonal reports whether any seasonal term is set
func (o Order) Seasonal() bool {
	return o.M > 1 && (o.SP > 0 || o.SD > 0 || o.SQ > 0)
}

// NumCoef is the number of autoregressive and moving average coefficients
func (o Order) NumCoef() int {
	return o.P + o.Q + o.SP + o.SQ
}

// Differences is the total number of differences taken, d + D
func (o Order) Differences() int {
	return o.D + o.SD
}

// Lost is the number of leading points consumed by differencing
func (o Order) Lost() int {
	return o.D + o.SD*o.M
}

func (o Order) String() string {
	s := fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
	if o.M > 1 {
		s += fmt.Sprintf("(%d,%d,%d)[%d]", o.SP, o.SD, o.SQ, o.M)
	}
	return s
}
