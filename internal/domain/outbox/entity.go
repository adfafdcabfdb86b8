package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Event is a domain event written in the same transaction as the state change
// it describes, then relayed to the broker.
type Event struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Status        Status
	RetryCount    int
	LastError     *string
	NextRetryAt   *time.Time
	CreatedAt     time.Time
	SentAt        *time.Time
}

const (
	AggregateAttendance = "attendance"
	AggregatePayroll    = "payroll_period"
)

const (
	EventSessionRecorded    = "attendance.session_recorded"
	EventRecordsGenerated   = "payroll.records_generated"
	EventDepartmentApproved = "payroll.department_approved"
	EventPeriodCompleted    = "payroll.period_completed"
	EventRecordsPaid        = "payroll.records_paid"
)

// MaxRetries is the number of failed deliveries after which an event stops
// being picked up by the relay.
const MaxRetries = 10

func NewEvent(aggregateType, aggregateID, eventType string, payload any, now time.Time) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
		Status:        StatusPending,
		CreatedAt:     now,
	}, nil
}

// RetryBackoff returns the delay before the next delivery attempt.
func RetryBackoff(retryCount int) time.Duration {
	if retryCount > MaxRetries {
		retryCount = MaxRetries
	}
	return time.Duration(retryCount+1) * 15 * time.Second
}

type SessionRecorded struct {
	SessionID   string    `json:"session_id"`
	EmployeeID  string    `json:"employee_id"`
	WorkDate    string    `json:"work_date"`
	SessionType string    `json:"session_type"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type RecordsGenerated struct {
	PeriodID     string  `json:"period_id"`
	DepartmentID *string `json:"department_id,omitempty"`
	RecordCount  int     `json:"record_count"`
	Reprocessed  bool    `json:"reprocessed"`
	PeriodStatus string  `json:"period_status"`
}

type DepartmentApproved struct {
	PeriodID     string    `json:"period_id"`
	DepartmentID string    `json:"department_id"`
	ApproverID   string    `json:"approver_id"`
	ApprovedAt   time.Time `json:"approved_at"`
}

type PeriodCompleted struct {
	PeriodID    string    `json:"period_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type RecordsPaid struct {
	PeriodID     string    `json:"period_id"`
	DepartmentID *string   `json:"department_id,omitempty"`
	UpdatedCount int64     `json:"updated_count"`
	PaidAt       time.Time `json:"paid_at"`
}
