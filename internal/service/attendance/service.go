package attendance

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
	"golang.org/x/sync/singleflight"
)

// Options are the attendance rules the service runs with.
type Options struct {
	Policy       attendance.WindowPolicy
	Rules        attendance.HoursRules
	MaxClockSkew time.Duration
}

type AttendanceServiceImpl struct {
	transactor database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	outboxRepo outbox.Repository
	cache      attendance.SummaryCache
	clock      clock.Clock
	policy     attendance.WindowPolicy
	rules      attendance.HoursRules
	maxSkew    time.Duration
	sf         *singleflight.Group
	// writes counts recorded sessions; a cache fill that overlaps one is discarded.
	writes     atomic.Uint64
	logger     *slog.Logger
}

func NewAttendanceService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	outboxRepo outbox.Repository,
	summaryCache attendance.SummaryCache,
	clk clock.Clock,
	opts Options,
	logger *slog.Logger,
) attendance.AttendanceService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		transactor:           transactor,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		outboxRepo:           outboxRepo,
		cache:                summaryCache,
		clock:                clk,
		policy:               opts.Policy,
		rules:                opts.Rules,
		maxSkew:              opts.MaxClockSkew,
		sf:                   &singleflight.Group{},
		logger:               logger.With("component", "attendance"),
	}
}
