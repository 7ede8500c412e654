package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can use errors.Is to tell them apart.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrNoWord is returned when a search has no target word.
	ErrNoWord = errors.New("no target word specified")

	// ErrInvalidPageBudget is returned when the page budget is not positive.
	ErrInvalidPageBudget = errors.New("invalid page budget: must be positive")

	// ErrInvalidWorkers is returned when the worker count is negative.
	ErrInvalidWorkers = errors.New("invalid worker count: must be non-negative")

	// ErrInvalidRotationProbability is returned when the rotation
	// probability is outside 0..100.
	ErrInvalidRotationProbability = errors.New("invalid rotation probability: must be between 0 and 100")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidShutdownGrace is returned when the grace period is negative.
	ErrInvalidShutdownGrace = errors.New("invalid shutdown grace: must be non-negative")

	// ErrInvalidTopWords is returned when the top word count is negative.
	ErrInvalidTopWords = errors.New("invalid top words: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
