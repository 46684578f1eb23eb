package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Compensation CompensationConfig
	Kafka        KafkaConfig
	RateLimit    RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// CompensationConfig holds onboarding defaults and commit policy.
type CompensationConfig struct {
	BasicPercent            decimal.Decimal
	HouseRentPercent        decimal.Decimal
	StandardAllowance       decimal.Decimal
	PerformanceBonusPercent decimal.Decimal
	TravelAllowancePercent  decimal.Decimal
	ProvidentFundRate       decimal.Decimal
	ProfessionalTax         decimal.Decimal
	WorkingDaysPerWeek      int
	BreakTimeHours          decimal.Decimal
	Tolerance               decimal.Decimal
	MaxPercent              decimal.Decimal
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topic   string
}

// RateLimitConfig throttles commits per actor.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	TTL               time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Compensation configuration
	comp := CompensationConfig{}
	decimals := []struct {
		key      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"COMPENSATION_BASIC_PERCENT", "50", &comp.BasicPercent},
		{"COMPENSATION_HRA_PERCENT", "50", &comp.HouseRentPercent},
		{"COMPENSATION_STANDARD_ALLOWANCE", "4167", &comp.StandardAllowance},
		{"COMPENSATION_PERFORMANCE_BONUS_PERCENT", "8.33", &comp.PerformanceBonusPercent},
		{"COMPENSATION_TRAVEL_ALLOWANCE_PERCENT", "8.33", &comp.TravelAllowancePercent},
		{"COMPENSATION_PF_RATE", "12", &comp.ProvidentFundRate},
		{"COMPENSATION_PROFESSIONAL_TAX", "200", &comp.ProfessionalTax},
		{"COMPENSATION_BREAK_TIME_HOURS", "1", &comp.BreakTimeHours},
		{"COMPENSATION_TOLERANCE", "0.01", &comp.Tolerance},
		{"COMPENSATION_MAX_PERCENT", "1000", &comp.MaxPercent},
	}
	for _, d := range decimals {
		v, err := decimal.NewFromString(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	comp.WorkingDaysPerWeek, err = strconv.Atoi(getEnv("COMPENSATION_WORKING_DAYS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMPENSATION_WORKING_DAYS: %w", err)
	}
	config.Compensation = comp

	// Kafka configuration
	config.Kafka = KafkaConfig{
		Brokers: getEnvSlice("KAFKA_BROKERS"),
		GroupID: getEnv("KAFKA_GROUP_ID", "hris-compensation"),
		Topic:   getEnv("KAFKA_EMPLOYEE_TOPIC", "hr.employee.lifecycle.v1"),
	}

	// Rate limit configuration
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("RATE_LIMIT_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_TTL: %w", err)
	}
	config.RateLimit = RateLimitConfig{RequestsPerSecond: rps, Burst: burst, TTL: ttl}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if !c.Compensation.Tolerance.IsPositive() {
		return fmt.Errorf("COMPENSATION_TOLERANCE must be positive")
	}
	if !c.Compensation.MaxPercent.IsPositive() || c.Compensation.MaxPercent.GreaterThanOrEqual(decimal.NewFromInt(10000)) {
		return fmt.Errorf("COMPENSATION_MAX_PERCENT must be between 0 and 10000")
	}
	if c.Compensation.WorkingDaysPerWeek < 1 || c.Compensation.WorkingDaysPerWeek > 7 {
		return fmt.Errorf("COMPENSATION_WORKING_DAYS must be between 1 and 7")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
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

// Defaults returns the onboarding configuration template.
func (c CompensationConfig) Defaults() compensation.Defaults {
	return compensation.Defaults{
		BasicPercent:            c.BasicPercent,
		HouseRentPercent:        c.HouseRentPercent,
		StandardAllowance:       c.StandardAllowance,
		PerformanceBonusPercent: c.PerformanceBonusPercent,
		TravelAllowancePercent:  c.TravelAllowancePercent,
		ProvidentFundRate:       c.ProvidentFundRate,
		ProfessionalTax:         c.ProfessionalTax,
		WorkingDaysPerWeek:      c.WorkingDaysPerWeek,
		BreakTimeHours:          c.BreakTimeHours,
	}
}
