package types

import (
	"encoding/json"
	"fmt"
)

// InterfaceSource describes how a contract interface description was obtained.
type InterfaceSource string

const (
	// InterfaceSourceManual is an interface pasted in by an operator.
	InterfaceSourceManual InterfaceSource = "manual"
	// InterfaceSourceFetched is an interface returned by a verified-contract lookup service.
	InterfaceSourceFetched InterfaceSource = "fetched"
	// InterfaceSourceHeuristic is an interface guessed from a selector signature database.
	InterfaceSourceHeuristic InterfaceSource = "heuristic"
	// InterfaceSourceCached is an interface restored from a local cache.
	InterfaceSourceCached InterfaceSource = "cached"
	// InterfaceSourceNone marks a decoded node for which no interface was available.
	InterfaceSourceNone InterfaceSource = "none"
)

var validInterfaceSources = map[InterfaceSource]struct{}{
	InterfaceSourceManual:    {},
	InterfaceSourceFetched:   {},
	InterfaceSourceHeuristic: {},
	InterfaceSourceCached:    {},
}

// Valid reports whether s is a source a registry entry may carry.
func (s InterfaceSource) Valid() bool {
	_, ok := validInterfaceSources[s]

	return ok
}

// UnmarshalJSON rejects unknown sources.
func (s *InterfaceSource) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	src := InterfaceSource(v)
	if !src.Valid() && src != InterfaceSourceNone {
		return fmt.Errorf("invalid interface source: %q", v)
	}
	*s = src

	return nil
}

// Confidence is the trust level attached to an interface description.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
	ConfidenceNone Confidence = "none"
)

// UnmarshalJSON rejects unknown confidence levels.
func (c *Confidence) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch conf := Confidence(v); conf {
	case ConfidenceHigh, ConfidenceLow, ConfidenceNone:
		*c = conf
		return nil
	default:
		return fmt.Errorf("invalid confidence: %q", v)
	}
}

// DefaultConfidence returns the confidence implied by a source when the
// collaborator did not supply one. Heuristic guesses are never trusted.
func DefaultConfidence(s InterfaceSource) Confidence {
	switch s {
	case InterfaceSourceManual, InterfaceSourceFetched:
		return ConfidenceHigh
	case InterfaceSourceHeuristic, InterfaceSourceCached:
		return ConfidenceLow
	case InterfaceSourceNone:
		return ConfidenceNone
	default:
		return ConfidenceLow
	}
}
