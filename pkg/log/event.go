package log

import (
	"time"
)

// Event represents one preset operation or one attribute-level step of it.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Operation that produced the event.
	Operation Operation `cbor:"2,keyasint"`

	// Outcome of the operation or attribute step.
	Outcome Outcome `cbor:"3,keyasint"`

	// Type is the full name of the component type involved.
	Type string `cbor:"4,keyasint,omitempty"`

	// Attribute is set for attribute-level events.
	Attribute string `cbor:"5,keyasint,omitempty"`

	// ScopeID identifies the capture or persistent scope, when known.
	ScopeID string `cbor:"6,keyasint,omitempty"`

	// Detail is a short free-form description (asset name, target count).
	Detail string `cbor:"7,keyasint,omitempty"`

	// Error is the error message for skipped or failed outcomes.
	Error string `cbor:"8,keyasint,omitempty"`
}

// Operation identifies what a preset component was doing.
type Operation uint8

const (
	// OpTransfer is a value transfer between two instances.
	OpTransfer Operation = 0
	// OpCapture is the creation of a preset from a source instance.
	OpCapture Operation = 1
	// OpApply is the application of a preset to a target.
	OpApply Operation = 2
	// OpUpdate is the refresh of a preset from a live instance.
	OpUpdate Operation = 3
	// OpRelease is the release of a preset's template.
	OpRelease Operation = 4
	// OpLoad is the decoding of a stored preset.
	OpLoad Operation = 5
	// OpSave is the encoding of a preset for storage.
	OpSave Operation = 6
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpTransfer:
		return "TRANSFER"
	case OpCapture:
		return "CAPTURE"
	case OpApply:
		return "APPLY"
	case OpUpdate:
		return "UPDATE"
	case OpRelease:
		return "RELEASE"
	case OpLoad:
		return "LOAD"
	case OpSave:
		return "SAVE"
	default:
		return "UNKNOWN"
	}
}

// ParseOperation returns the operation for a case-sensitive upper-case name.
func ParseOperation(s string) (Operation, bool) {
	for o := OpTransfer; o <= OpSave; o++ {
		if o.String() == s {
			return o, true
		}
	}
	return 0, false
}

// Outcome classifies the result of an operation.
type Outcome uint8

const (
	// OutcomeOK indicates success.
	OutcomeOK Outcome = 0
	// OutcomeSkipped indicates an attribute that could not be copied.
	OutcomeSkipped Outcome = 1
	// OutcomeFailed indicates the whole operation failed.
	OutcomeFailed Outcome = 2
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeSkipped:
		return "SKIPPED"
	case OutcomeFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ParseOutcome returns the outcome for a case-sensitive upper-case name.
func ParseOutcome(s string) (Outcome, bool) {
	for o := OutcomeOK; o <= OutcomeFailed; o++ {
		if o.String() == s {
			return o, true
		}
	}
	return 0, false
}

// ErrorString returns err's message, or "" for nil.
func ErrorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
