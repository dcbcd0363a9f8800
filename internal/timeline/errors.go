package timeline

import (
	"errors"
	"fmt"
)

// Error is the structured error returned by model mutations.
//
// Validation errors surface at the offending call as a precise error
// kind; they never propagate through change-notification listeners, and
// a failed call never leaves state partially mutated.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// LayerID identifies the affected layer, when known.
	LayerID string

	// KeyframeID identifies the affected keyframe, when known.
	KeyframeID string

	// TweenID identifies the affected tween, when known.
	TweenID string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes model errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced layer/keyframe/tween id
	// does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidReference indicates a tween references missing,
	// duplicate, or cross-layer keyframe ids, or a group operation
	// received an invalid member list.
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"

	// ErrCodeCyclicGroup indicates a reparenting operation would make a
	// layer its own transitive ancestor.
	ErrCodeCyclicGroup ErrorCode = "CYCLIC_GROUP"

	// ErrCodeInvalidTimeRange indicates a negative time, or a duration
	// below the maximum existing keyframe time.
	ErrCodeInvalidTimeRange ErrorCode = "INVALID_TIME_RANGE"

	// ErrCodeMalformedState indicates serialized state that failed
	// invariant re-validation. The prior state is preserved.
	ErrCodeMalformedState ErrorCode = "MALFORMED_STATE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.LayerID != "" && e.KeyframeID != "":
		return fmt.Sprintf("%s: %s (layer=%s, keyframe=%s)", e.Code, e.Message, e.LayerID, e.KeyframeID)
	case e.LayerID != "" && e.TweenID != "":
		return fmt.Sprintf("%s: %s (layer=%s, tween=%s)", e.Code, e.Message, e.LayerID, e.TweenID)
	case e.LayerID != "":
		return fmt.Sprintf("%s: %s (layer=%s)", e.Code, e.Message, e.LayerID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NOT_FOUND model error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsInvalidReference reports whether err is an INVALID_REFERENCE model error.
func IsInvalidReference(err error) bool { return hasCode(err, ErrCodeInvalidReference) }

// IsCyclicGroup reports whether err is a CYCLIC_GROUP model error.
func IsCyclicGroup(err error) bool { return hasCode(err, ErrCodeCyclicGroup) }

// IsInvalidTimeRange reports whether err is an INVALID_TIME_RANGE model error.
func IsInvalidTimeRange(err error) bool { return hasCode(err, ErrCodeInvalidTimeRange) }

// IsMalformedState reports whether err is a MALFORMED_STATE model error.
func IsMalformedState(err error) bool { return hasCode(err, ErrCodeMalformedState) }

func hasCode(err error, code ErrorCode) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

// NewMalformedStateError wraps a deserialization or validation failure.
// Exported for the document layer, which maps schema violations onto the
// same error kind the model's own re-validation produces.
func NewMalformedStateError(message string, err error) *Error {
	return &Error{Code: ErrCodeMalformedState, Message: message, Err: err}
}

func newLayerNotFound(layerID string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "layer does not exist", LayerID: layerID}
}

func newKeyframeNotFound(layerID, keyframeID string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "keyframe does not exist", LayerID: layerID, KeyframeID: keyframeID}
}

func newCyclicGroup(layerID, parentID string) *Error {
	return &Error{
		Code:    ErrCodeCyclicGroup,
		Message: fmt.Sprintf("reparenting under %s would create an ancestor cycle", parentID),
		LayerID: layerID,
	}
}

func newInvalidTimeRange(message string) *Error {
	return &Error{Code: ErrCodeInvalidTimeRange, Message: message}
}

func newInvalidReference(message string, layerID string) *Error {
	return &Error{Code: ErrCodeInvalidReference, Message: message, LayerID: layerID}
}
