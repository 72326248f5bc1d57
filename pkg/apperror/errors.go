// Package apperror defines the error taxonomy of the planning core.
//
// Most things that can go wrong here are about one identifiable piece of
// the network, so an Error carries the id of the offending point or
// segment next to its stable code instead of a free-form field name.
// Network and settings validation never stop at the first problem: every
// violation lands in a ValidationErrors aggregate so a single pass reports
// the full picture.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of failure. Codes are stable strings so
// they survive serialization into result messages and logs.
type ErrorCode string

const (
	// Configuration / validation
	CodeInvalidNetwork   ErrorCode = "INVALID_NETWORK"
	CodeEmptyNetwork     ErrorCode = "EMPTY_NETWORK"
	CodeDanglingSegment  ErrorCode = "DANGLING_SEGMENT"
	CodeSelfLoop         ErrorCode = "SELF_LOOP"
	CodeInvalidCapacity  ErrorCode = "INVALID_CAPACITY"
	CodeInvalidLength    ErrorCode = "INVALID_LENGTH"
	CodeInvalidDiameter  ErrorCode = "INVALID_DIAMETER"
	CodeNegativeCost     ErrorCode = "NEGATIVE_COST"
	CodeInvalidPressure  ErrorCode = "INVALID_PRESSURE_WINDOW"
	CodeInvalidSupply    ErrorCode = "INVALID_SUPPLY"
	CodeInvalidDemand    ErrorCode = "INVALID_DEMAND"
	CodeInvalidBoost     ErrorCode = "INVALID_BOOST"
	CodeInvalidSettings  ErrorCode = "INVALID_SETTINGS"
	CodeInvalidPointType ErrorCode = "INVALID_POINT_TYPE"

	// Feasibility
	CodeNoReceipt       ErrorCode = "NO_ACTIVE_RECEIPT"
	CodeNoDelivery      ErrorCode = "NO_ACTIVE_DELIVERY"
	CodeSupplyShortfall ErrorCode = "SUPPLY_SHORTFALL"
	CodeInfeasible      ErrorCode = "INFEASIBLE"

	// Algorithms / solver
	CodeAlgorithmNotFound ErrorCode = "ALGORITHM_NOT_FOUND"
	CodeAlgorithmMismatch ErrorCode = "ALGORITHM_MISMATCH"
	CodeAlgorithmError    ErrorCode = "ALGORITHM_ERROR"
	CodeSolverError       ErrorCode = "SOLVER_ERROR"
	CodeSolverUnavailable ErrorCode = "SOLVER_UNAVAILABLE"
	CodeTimeout           ErrorCode = "TIMEOUT"

	// General
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeNilInput ErrorCode = "NIL_INPUT"
)

// Error is a coded error, optionally anchored to the network element it
// is about. At most one of PointID/SegmentID is set.
type Error struct {
	Code      ErrorCode
	Message   string
	PointID   string
	SegmentID string
	Cause     error
}

// New creates an error with a printf-style message.
func New(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause
// stays reachable through errors.Is / errors.As.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// AtPoint anchors the error to a point and returns it.
func (e *Error) AtPoint(id string) *Error {
	e.PointID = id
	return e
}

// AtSegment anchors the error to a segment and returns it.
func (e *Error) AtSegment(id string) *Error {
	e.SegmentID = id
	return e
}

// Error renders "CODE: subject: message" with the subject omitted for
// network-wide errors.
func (e *Error) Error() string {
	switch {
	case e.PointID != "":
		return fmt.Sprintf("%s: point %s: %s", e.Code, e.PointID, e.Message)
	case e.SegmentID != "":
		return fmt.Sprintf("%s: segment %s: %s", e.Code, e.SegmentID, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the cause for error-chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether err (anywhere in its chain) is an *Error with the
// given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// Code extracts the code from an error chain, CodeInternal when no *Error
// is present.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ValidationErrors collects every violation found in one validation pass.
// The Pointf/Segmentf emitters anchor each entry to the element it is
// about, which is how nearly all network validation reports problems.
type ValidationErrors struct {
	Errors []*Error
}

// Add appends a prepared error.
func (v *ValidationErrors) Add(err *Error) {
	v.Errors = append(v.Errors, err)
}

// Addf appends a network-wide error.
func (v *ValidationErrors) Addf(code ErrorCode, format string, args ...any) {
	v.Add(New(code, format, args...))
}

// Pointf appends an error anchored to a point.
func (v *ValidationErrors) Pointf(pointID string, code ErrorCode, format string, args ...any) {
	v.Add(New(code, format, args...).AtPoint(pointID))
}

// Segmentf appends an error anchored to a segment.
func (v *ValidationErrors) Segmentf(segmentID string, code ErrorCode, format string, args ...any) {
	v.Add(New(code, format, args...).AtSegment(segmentID))
}

// HasErrors reports whether any violation was collected.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error joins every violation into one line for logs.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "no validation errors"
	}
	return fmt.Sprintf("%d validation error(s): %s", len(v.Errors), strings.Join(v.Messages(), "; "))
}

// Messages returns one rendered string per violation.
func (v *ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

// ErrOrNil returns the aggregate when it holds anything, nil otherwise.
func (v *ValidationErrors) ErrOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
