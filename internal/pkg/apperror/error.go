package apperror

import (
	"errors"
	"fmt"
)

// Kind is the coarse error category callers use to decide whether to retry.
type Kind string

const (
	KindValidation           Kind = "VALIDATION"
	KindStateConflict        Kind = "STATE_CONFLICT"
	KindConfigurationMissing Kind = "CONFIGURATION_MISSING"
	KindTransient            Kind = "TRANSIENT"
	KindNotFound             Kind = "NOT_FOUND"
	KindInternal             Kind = "INTERNAL"
)

// Error is a classified application error. Code is the machine readable reason
// shown to clients (e.g. DUPLICATE_SESSION).
type Error struct {
	Kind         Kind
	Code         string
	Message      string
	EmployeeID   string
	DepartmentID string
	Err          error
}

// Error implements error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.EmployeeID != "" {
		msg = fmt.Sprintf("%s (employee %s)", msg, e.EmployeeID)
	}
	if e.DepartmentID != "" {
		msg = fmt.Sprintf("%s (department %s)", msg, e.DepartmentID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Code, so sentinel values can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(err error, kind Kind, code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// WithEmployee returns a copy of e naming the offending employee.
func (e *Error) WithEmployee(employeeID string) *Error {
	cp := *e
	cp.EmployeeID = employeeID
	return &cp
}

// WithDepartment returns a copy of e naming the offending department.
func (e *Error) WithDepartment(departmentID string) *Error {
	cp := *e
	cp.DepartmentID = departmentID
	return &cp
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// Transient wraps a storage failure. Both recording and payroll generation are
// idempotent in outcome, so callers may retry the whole operation.
func Transient(err error, message string) *Error {
	return Wrap(err, KindTransient, "STORAGE_UNAVAILABLE", message)
}

// KindOf reports the Kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As is a shorthand for errors.As with *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
