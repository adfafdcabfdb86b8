package attendance

import (
	"time"
)

// AttendanceSession is one verified clock event. It is unique per
// (EmployeeID, WorkDate, SessionType) and immutable once recorded.
type AttendanceSession struct {
	ID               string
	EmployeeID       string
	WorkDate         time.Time
	SessionType      SessionType
	RecordedAt       time.Time
	VerificationHash string
	PhotoRef         *string
	LocationTag      *string
	CreatedAt        time.Time
}

// Verification is the opaque proof produced by the identity/photo step.
type Verification struct {
	Token       string
	PhotoRef    *string
	LocationTag *string
}

// Decision is the outcome of an action check. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason, message string) Decision {
	return Decision{Allowed: false, Reason: reason, Message: message}
}

// Reason is the structured refusal code shown to the kiosk.
type Reason string

const (
	ReasonEmployeeNotActive Reason = "EMPLOYEE_NOT_ACTIVE"
	ReasonDuplicateSession  Reason = "DUPLICATE_SESSION"
	ReasonOutOfSequence     Reason = "OUT_OF_SEQUENCE"
	ReasonOutsideWindow     Reason = "OUTSIDE_WINDOW"
)

// Err converts a refusal into its sentinel error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	var base = ErrOutsideWindow
	switch d.Reason {
	case ReasonEmployeeNotActive:
		base = ErrEmployeeNotActive
	case ReasonDuplicateSession:
		base = ErrDuplicateSession
	case ReasonOutOfSequence:
		base = ErrOutOfSequence
	}
	cp := *base
	cp.Message = d.Message
	return &cp
}

// NextSession is the kiosk's view of what an employee can do now.
type NextSession struct {
	EmployeeID  string
	WorkDate    time.Time
	Expectation Expectation
	// Decision is set when a session type is due.
	Decision    *Decision
	WindowStart *time.Time
	WindowEnd   *time.Time
}
