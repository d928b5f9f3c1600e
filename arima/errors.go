package arima

import "errors"

var (
	ErrInvalidOrder       = errors.New("invalid arima order")
	ErrInsufficientData   = errors.New("insufficient data points for the order")
	ErrNonFiniteValue     = errors.New("series contains a non-finite value")
	ErrNotFitted          = errors.New("model must be fit before use")
	ErrInvalidHorizon     = errors.New("forecast horizon must be positive")
	ErrInvalidLevel       = errors.New("prediction interval level must be in (0, 100)")
	ErrOptimizationFailed = errors.New("unable to minimize conditional sum of squares")
	ErrNonStationary      = errors.New("autoregressive polynomial has a root near or inside the unit circle")
	ErrNonInvertible      = errors.New("moving average polynomial has a root near or inside the unit circle")
	ErrInvalidOptions     = errors.New("invalid arima options")
)
