package models

import (
	"errors"
)

var (
	ErrNoOptions         = errors.New("no initialized model options")
	ErrTargetLenMismatch = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix  = errors.New("no training matrix")
	ErrNoTargetMatrix    = errors.New("no target matrix")
	ErrSingularMatrix    = errors.New("design matrix is rank deficient")
)
