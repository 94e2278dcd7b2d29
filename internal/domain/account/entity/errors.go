package entity

import "errors"

// Domain errors for account analytics
var (
	ErrUnknownDimension = errors.New("unknown group dimension")
	ErrUnknownView      = errors.New("unknown report view")
	ErrUnknownFilter    = errors.New("unknown drill-down filter")
	ErrUnknownReport    = errors.New("unknown export report")
	ErrInvalidThreshold = errors.New("threshold must be positive")
	ErrInvalidTarget    = errors.New("daily target needs a client and a non-negative value")
	ErrInvalidRecord    = errors.New("account record is not a JSON object")
	ErrArchiveDisabled  = errors.New("export archive is not configured")
)
