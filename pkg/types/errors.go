package types

import "errors"

// Domain errors for type validation
var (
	// Record errors
	ErrInvalidRecordID  = errors.New("invalid record ID")
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrInvalidDimension = errors.New("embedding dimension must be positive")

	// Ranking configuration errors
	ErrInvalidWeights = errors.New("lexWeightMin must not exceed lexWeightMax")
)
