package forecaster

import "github.com/aouyang1/go-autoforecast/arima"

// Model is a serializable summary of the selected model and its fit statistics
type Model struct {
	Options         *Options           `json:"options"`
	Name            string             `json:"name"`
	Order           arima.Order        `json:"order"`
	IncludeConstant bool               `json:"include_constant"`
	Coefficients    arima.Coefficients `json:"coefficients"`
	Sigma2          float64            `json:"sigma2"`
	LogLik          float64            `json:"loglik"`
	AIC             float64            `json:"aic"`
	AICc            float64            `json:"aicc"`
	BIC             float64            `json:"bic"`
	ModelsEvaluated int                `json:"models_evaluated"`
	Scores          *Scores            `json:"scores"`
}
