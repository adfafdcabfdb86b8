package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// KioskRatePerMinute and KioskBurst bound next-session polling per employee.
	KioskRatePerMinute int
	KioskBurst         int
	// OvertimeToLeave mounts the overtime-to-leave route.
	OvertimeToLeave bool
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	kioskLimiter := middleware.NewKeyedRateLimiter(cfg.KioskRatePerMinute, cfg.KioskBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceRecord))
					r.Post("/sessions", attendanceHandler.RecordSession)
					r.Route("/employees/{employeeID}", func(r chi.Router) {
						r.With(kioskLimiter.ByURLParam("employeeID")).Get("/next-session", attendanceHandler.NextSession)
						r.Get("/can-perform", attendanceHandler.CanPerform)
						r.Get("/today", attendanceHandler.Today)
					})
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).
					Get("/employees/{employeeID}/summary", attendanceHandler.Summary)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/periods", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Post("/", payrollHandler.CreatePeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListPeriods)

					r.Route("/{periodID}", func(r chi.Router) {
						// View
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionPayrollView))
							r.Get("/", payrollHandler.GetPeriod)
							r.Get("/records", payrollHandler.ListRecords)
							r.Get("/approvals", payrollHandler.ListApprovals)
						})

						// Manage
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionPayrollManage))
							r.Put("/", payrollHandler.UpdatePeriod)
							r.Delete("/", payrollHandler.DeletePeriod)
							r.Post("/generate", payrollHandler.GenerateRecords)
							r.Post("/reprocess", payrollHandler.ReprocessRecords)
						})

						r.With(middleware.RequirePermission(user.PermissionPayrollPay)).
							Post("/mark-paid", payrollHandler.MarkRecordsPaid)
						r.With(middleware.RequirePermission(user.PermissionPayrollApprove)).
							Post("/departments/{departmentID}/approve", payrollHandler.ApproveDepartment)

						if cfg.OvertimeToLeave {
							r.With(middleware.RequirePermission(user.PermissionPayrollView)).
								Get("/employees/{employeeID}/overtime-leave", payrollHandler.OvertimeLeave)
						}
					})
				})

				r.With(middleware.RequirePermission(user.PermissionPayrollView)).
					Get("/records/{recordID}", payrollHandler.GetRecord)

				r.Route("/adjustment-types", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollConfigure))
					r.Post("/", payrollHandler.CreateAdjustmentType)
					r.Get("/", payrollHandler.ListAdjustmentTypes)
					r.Delete("/{id}", payrollHandler.DeactivateAdjustmentType)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})

	return r
}
