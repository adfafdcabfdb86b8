package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
	Features   FeatureConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds summary cache configuration. An empty Addr selects the
// in-process cache.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SummaryTTL time.Duration
}

// KafkaConfig holds outbox relay configuration. No brokers disables the relay.
type KafkaConfig struct {
	Brokers       []string
	TopicPrefix   string
	RelayInterval time.Duration
	BatchSize     int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Version  string
	// Storage selects the repository backend: "postgres" or "memory".
	Storage        string
	AllowedOrigins []string
}

// AttendanceConfig holds session window configuration. Windows are "HH:MM-HH:MM".
type AttendanceConfig struct {
	Timezone           string
	MorningIn          string
	MorningOut         string
	AfternoonIn        string
	AfternoonOut       string
	Overtime           string
	Grace              time.Duration
	StandardDailyHours decimal.Decimal
	MaxClockSkew       time.Duration
	KioskRatePerMinute int
	KioskBurst         int
}

type PayrollConfig struct {
	OvertimeMultiplier decimal.Decimal
	StandardDailyHours decimal.Decimal
	WorkingWeekdays    []time.Weekday
	CurrencyScale      int32
}

type FeatureConfig struct {
	OvertimeToLeave bool
}

func Load() (*Config, error) {
	// .env is optional; real deployments use the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_attendance_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	summaryTTL, err := time.ParseDuration(getEnv("REDIS_SUMMARY_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_SUMMARY_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:       getEnv("REDIS_ADDR", ""),
		Password:   getEnv("REDIS_PASSWORD", ""),
		DB:         redisDB,
		SummaryTTL: summaryTTL,
	}

	// Kafka configuration
	relayInterval, err := time.ParseDuration(getEnv("KAFKA_RELAY_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_RELAY_INTERVAL: %w", err)
	}
	batchSize, err := strconv.Atoi(getEnv("KAFKA_RELAY_BATCH_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_RELAY_BATCH_SIZE: %w", err)
	}

	config.Kafka = KafkaConfig{
		Brokers:       getEnvSlice("KAFKA_BROKERS"),
		TopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", "hris"),
		RelayInterval: relayInterval,
		BatchSize:     batchSize,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  getEnv("APP_VERSION", "dev"),
		Storage:  getEnv("APP_STORAGE", "postgres"),
	}
	config.App.AllowedOrigins = getEnvSlice("CORS_ALLOWED_ORIGINS")

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	attendance, err := loadAttendance()
	if err != nil {
		return nil, err
	}
	config.Attendance = attendance

	// Payroll configuration
	payroll, err := loadPayroll(attendance.StandardDailyHours)
	if err != nil {
		return nil, err
	}
	config.Payroll = payroll

	// Feature flags
	overtimeToLeave, err := strconv.ParseBool(getEnv("FEATURE_OVERTIME_TO_LEAVE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEATURE_OVERTIME_TO_LEAVE: %w", err)
	}
	config.Features = FeatureConfig{OvertimeToLeave: overtimeToLeave}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	grace, err := strconv.Atoi(getEnv("ATTENDANCE_GRACE_MINUTES", "15"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid ATTENDANCE_GRACE_MINUTES: %w", err)
	}
	dailyHours, err := decimal.NewFromString(getEnv("ATTENDANCE_STANDARD_DAILY_HOURS", "9"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid ATTENDANCE_STANDARD_DAILY_HOURS: %w", err)
	}
	skew, err := time.ParseDuration(getEnv("ATTENDANCE_MAX_CLOCK_SKEW", "2m"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid ATTENDANCE_MAX_CLOCK_SKEW: %w", err)
	}
	rate, err := strconv.Atoi(getEnv("KIOSK_RATE_PER_MINUTE", "30"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid KIOSK_RATE_PER_MINUTE: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("KIOSK_BURST", "5"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid KIOSK_BURST: %w", err)
	}

	return AttendanceConfig{
		Timezone:           getEnv("ATTENDANCE_TIMEZONE", "Asia/Jakarta"),
		MorningIn:          getEnv("WINDOW_MORNING_IN", "07:00-12:00"),
		MorningOut:         getEnv("WINDOW_MORNING_OUT", "12:00-13:00"),
		AfternoonIn:        getEnv("WINDOW_AFTERNOON_IN", "13:00-18:00"),
		AfternoonOut:       getEnv("WINDOW_AFTERNOON_OUT", "18:00-24:00"),
		Overtime:           getEnv("WINDOW_OVERTIME", "18:00-24:00"),
		Grace:              time.Duration(grace) * time.Minute,
		StandardDailyHours: dailyHours,
		MaxClockSkew:       skew,
		KioskRatePerMinute: rate,
		KioskBurst:         burst,
	}, nil
}

// loadPayroll reads payroll settings. The standard daily hours default to the
// attendance value so proration and the daily regular-hours cap agree.
func loadPayroll(attendanceDailyHours decimal.Decimal) (PayrollConfig, error) {
	multiplier, err := decimal.NewFromString(getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.25"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_OVERTIME_MULTIPLIER: %w", err)
	}
	dailyHours, err := decimal.NewFromString(getEnv("PAYROLL_STANDARD_DAILY_HOURS", attendanceDailyHours.String()))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_STANDARD_DAILY_HOURS: %w", err)
	}
	weekdays, err := parseWeekdays(getEnvSlice("PAYROLL_WORKING_WEEKDAYS"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_WORKING_WEEKDAYS: %w", err)
	}
	scale, err := strconv.Atoi(getEnv("PAYROLL_CURRENCY_SCALE", "2"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_CURRENCY_SCALE: %w", err)
	}

	return PayrollConfig{
		OvertimeMultiplier: multiplier,
		StandardDailyHours: dailyHours,
		WorkingWeekdays:    weekdays,
		CurrencyScale:      int32(scale),
	}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekdays(values []string) ([]time.Weekday, error) {
	if len(values) == 0 {
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, nil
	}
	result := make([]time.Weekday, 0, len(values))
	for _, v := range values {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(v))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", v)
		}
		result = append(result, d)
	}
	return result, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Storage != "postgres" && c.App.Storage != "memory" {
		return fmt.Errorf("APP_STORAGE must be postgres or memory")
	}
	if c.App.Storage == "postgres" && c.Database.Password == "" && c.App.Env == "production" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	if _, err := c.Attendance.WindowPolicy(); err != nil {
		return err
	}
	if !c.Attendance.StandardDailyHours.IsPositive() {
		return fmt.Errorf("ATTENDANCE_STANDARD_DAILY_HOURS must be positive")
	}
	if !c.Payroll.StandardDailyHours.IsPositive() {
		return fmt.Errorf("PAYROLL_STANDARD_DAILY_HOURS must be positive")
	}
	if !c.Payroll.StandardDailyHours.Equal(c.Attendance.StandardDailyHours) {
		return fmt.Errorf("PAYROLL_STANDARD_DAILY_HOURS must equal ATTENDANCE_STANDARD_DAILY_HOURS")
	}
	if c.Payroll.OvertimeMultiplier.IsNegative() {
		return fmt.Errorf("PAYROLL_OVERTIME_MULTIPLIER must not be negative")
	}
	if c.Payroll.CurrencyScale < 0 || c.Payroll.CurrencyScale > 4 {
		return fmt.Errorf("PAYROLL_CURRENCY_SCALE must be between 0 and 4")
	}
	if c.Attendance.KioskRatePerMinute <= 0 || c.Attendance.KioskBurst <= 0 {
		return fmt.Errorf("KIOSK_RATE_PER_MINUTE and KIOSK_BURST must be positive")
	}
	return nil
}

// WindowPolicy builds the session window policy from the configured windows.
func (a AttendanceConfig) WindowPolicy() (attendance.WindowPolicy, error) {
	specs := map[attendance.SessionType]struct {
		env   string
		value string
	}{
		attendance.SessionMorningIn:    {"WINDOW_MORNING_IN", a.MorningIn},
		attendance.SessionMorningOut:   {"WINDOW_MORNING_OUT", a.MorningOut},
		attendance.SessionAfternoonIn:  {"WINDOW_AFTERNOON_IN", a.AfternoonIn},
		attendance.SessionAfternoonOut: {"WINDOW_AFTERNOON_OUT", a.AfternoonOut},
		attendance.SessionOvertime:     {"WINDOW_OVERTIME", a.Overtime},
	}

	windows := make(map[attendance.SessionType]attendance.Window, len(specs))
	for sessionType, spec := range specs {
		w, err := attendance.ParseWindow(spec.value)
		if err != nil {
			return attendance.WindowPolicy{}, fmt.Errorf("invalid %s: %w", spec.env, err)
		}
		windows[sessionType] = w
	}

	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return attendance.WindowPolicy{}, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}

	policy, err := attendance.NewWindowPolicy(windows, a.Grace, loc)
	if err != nil {
		return attendance.WindowPolicy{}, fmt.Errorf("invalid attendance windows: %w", err)
	}
	return policy, nil
}

// StandardDaily returns the standard daily hours as a duration.
func (a AttendanceConfig) StandardDaily() time.Duration {
	minutes := a.StandardDailyHours.Mul(decimal.NewFromInt(60)).IntPart()
	return time.Duration(minutes) * time.Minute
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
