package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const (
	DriverPgx  = "pgx"
	DriverGorm = "gorm"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	Attendance AttendanceConfig
	Redis      RedisConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int

	// Driver selects the repository backend: pgx (raw SQL) or gorm.
	Driver        string
	GormDialect   string
	SQLitePath    string
	RunMigrations bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// AttendanceConfig holds the absence job settings, resolved once at startup.
type AttendanceConfig struct {
	Cutoff      attendance.Cutoff
	Location    *time.Location
	JobInterval time.Duration
}

// RedisConfig is optional; an empty Addr disables cross-instance job locking.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var errs *multierror.Error
	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid DB_PORT: %w", err))
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid DB_MAX_CONNS: %w", err))
	}
	runMigrations, err := strconv.ParseBool(getEnv("DB_RUN_MIGRATIONS", "false"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid DB_RUN_MIGRATIONS: %w", err))
	}

	config.Database = DatabaseConfig{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          dbPort,
		User:          getEnv("DB_USER", "postgres"),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:       getEnv("DB_SSL_MODE", "disable"),
		MaxConns:      dbMaxConns,
		Driver:        strings.ToLower(getEnv("DB_DRIVER", DriverPgx)),
		GormDialect:   strings.ToLower(getEnv("DB_GORM_DIALECT", "postgres")),
		SQLitePath:    getEnv("DB_SQLITE_PATH", "attendance.db"),
		RunMigrations: runMigrations,
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid REDIS_DB: %w", err))
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid APP_PORT: %w", err))
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Attendance configuration
	loc, err := loadLocation(os.Getenv("ATTENDANCE_TIMEZONE"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err))
	}
	interval, err := time.ParseDuration(getEnv("ATTENDANCE_JOB_INTERVAL", "1h"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid ATTENDANCE_JOB_INTERVAL: %w", err))
	}

	config.Attendance = AttendanceConfig{
		Cutoff:      attendance.ResolveCutoff(os.Getenv("ATTENDANCE_CUTOFF_HOUR"), os.Getenv("ATTENDANCE_CUTOFF_MINUTE")),
		Location:    loc,
		JobInterval: interval,
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("configuration parsing failed: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs *multierror.Error

	if !validator.IsInSlice(c.Database.Driver, []string{DriverPgx, DriverGorm}) {
		errs = multierror.Append(errs, fmt.Errorf("DB_DRIVER must be pgx or gorm, got %q", c.Database.Driver))
	}
	if c.Database.Driver == DriverGorm && !validator.IsInSlice(c.Database.GormDialect, []string{"postgres", "sqlite"}) {
		errs = multierror.Append(errs, fmt.Errorf("DB_GORM_DIALECT must be postgres or sqlite, got %q", c.Database.GormDialect))
	}

	if c.UsesPostgres() && c.Database.Password == "" {
		errs = multierror.Append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("APP_PORT out of range: %d", c.App.Port))
	}
	if c.Attendance.JobInterval <= 0 {
		errs = multierror.Append(errs, errors.New("ATTENDANCE_JOB_INTERVAL must be positive"))
	}
	if c.Attendance.Location == nil {
		errs = multierror.Append(errs, errors.New("attendance location is not set"))
	}

	return errs.ErrorOrNil()
}

// UsesPostgres reports whether the selected backend talks to PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.Database.Driver == DriverPgx || c.Database.GormDialect == "postgres"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
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
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
