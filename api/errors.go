package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var ErrRateLimited = errors.New("too many forecast requests")

// ValidationError wraps a request that was rejected before any model was built
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid request, " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ServiceError wraps a failure to fit or predict. Details are logged but not returned to clients.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return "forecast failed, " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every non 2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func statusAndDetail(err error) (int, string) {
	var verr *ValidationError
	var serr *ServiceError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Err.Error()
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, ErrRateLimited.Error()
	case errors.As(err, &serr):
		return http.StatusInternalServerError, "forecast failed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, detail := statusAndDetail(err)
	logger := s.requestLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	_ = c.Error(err)
	writeJSON(c, status, ErrorResponse{Detail: detail})
}
