package model

import (
	"encoding/json"
	"fmt"
)

// Status is the state of a crawl.
type Status int

const (
	// StatusRunning is the state between setup and a terminal transition.
	StatusRunning Status = iota

	// StatusSucceeded means the target word was found.
	StatusSucceeded

	// StatusExhaustedBudget means the page budget was used up.
	StatusExhaustedBudget

	// StatusFrontierExhausted means no valid, in-scope, unvisited address
	// was left to crawl before the budget was reached.
	StatusFrontierExhausted

	// StatusAborted means the crawl never started: invalid seed, empty
	// identity pool, or the site opted out of crawling.
	StatusAborted

	// StatusCancelled means the caller cancelled the crawl.
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusRunning:           "running",
	StatusSucceeded:         "succeeded",
	StatusExhaustedBudget:   "exhausted-budget",
	StatusFrontierExhausted: "frontier-exhausted",
	StatusAborted:           "aborted",
	StatusCancelled:         "cancelled",
}

// String returns the status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusRunning, fmt.Errorf("unknown crawl status %q", name)
}
