package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Store     StoreConfig     `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Mpesa     MpesaConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type StoreConfig struct {
	Driver          string        `mapstructure:"STORE_DRIVER"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type MpesaConfig struct {
	BaseURL     string `mapstructure:"MPESA_BASE_URL"`
	ConsumerKey string `mapstructure:"MPESA_CONSUMER_KEY"`
	Secret      string `mapstructure:"MPESA_CONSUMER_SECRET"`
	ShortCode   string `mapstructure:"MPESA_SHORT_CODE"`
	Passkey     string `mapstructure:"MPESA_PASSKEY"`
	CallbackURL string `mapstructure:"MPESA_CALLBACK_URL"`
}

type SchedulerConfig struct {
	AccrualSpec   string `mapstructure:"SCHEDULER_ACCRUAL_SPEC"`
	ArrearsSpec   string `mapstructure:"SCHEDULER_ARREARS_SPEC"`
	ReconcileSpec string `mapstructure:"SCHEDULER_RECONCILE_SPEC"`
}

type BusinessConfig struct {
	MinLoanAmount        string `mapstructure:"MIN_LOAN_AMOUNT"`
	MaxLoanAmount        string `mapstructure:"MAX_LOAN_AMOUNT"`
	MinContribution      string `mapstructure:"MIN_CONTRIBUTION"`
	MaxContribution      string `mapstructure:"MAX_CONTRIBUTION"`
	OverpaymentTolerance string `mapstructure:"OVERPAYMENT_TOLERANCE"`
	EligibilityMonths    int    `mapstructure:"ELIGIBILITY_MONTHS"`
	EligibilityContribs  int    `mapstructure:"ELIGIBILITY_CONTRIBUTIONS"`
	ScheduleCacheTTL     string `mapstructure:"SCHEDULE_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("STORE_DRIVER", StoreDriverMemory)
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke")
	viper.SetDefault("SCHEDULER_ACCRUAL_SPEC", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_ARREARS_SPEC", "0 30 0 * * *")
	viper.SetDefault("SCHEDULER_RECONCILE_SPEC", "0 */15 * * * *")
	viper.SetDefault("MIN_LOAN_AMOUNT", "1000")
	viper.SetDefault("MAX_LOAN_AMOUNT", "1000000")
	viper.SetDefault("MIN_CONTRIBUTION", "100")
	viper.SetDefault("MAX_CONTRIBUTION", "500000")
	viper.SetDefault("OVERPAYMENT_TOLERANCE", "1.1")
	viper.SetDefault("ELIGIBILITY_MONTHS", 6)
	viper.SetDefault("ELIGIBILITY_CONTRIBUTIONS", 3)
	viper.SetDefault("SCHEDULE_CACHE_TTL", "24h")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Store.Driver != StoreDriverMemory && c.Store.Driver != StoreDriverPostgres {
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverMemory, StoreDriverPostgres)
	}

	if c.Store.Driver == StoreDriverPostgres && c.Store.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
	}

	if c.Business.EligibilityMonths <= 0 {
		return fmt.Errorf("ELIGIBILITY_MONTHS must be greater than 0")
	}

	if c.Business.EligibilityContribs <= 0 {
		return fmt.Errorf("ELIGIBILITY_CONTRIBUTIONS must be greater than 0")
	}

	for _, v := range []string{
		c.Business.MinLoanAmount,
		c.Business.MaxLoanAmount,
		c.Business.MinContribution,
		c.Business.MaxContribution,
		c.Business.OverpaymentTolerance,
	} {
		if _, err := decimal.NewFromString(v); err != nil {
			return fmt.Errorf("business amount %q must be a valid decimal: %w", v, err)
		}
	}

	if _, err := time.ParseDuration(c.Business.ScheduleCacheTTL); err != nil {
		return fmt.Errorf("SCHEDULE_CACHE_TTL must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// MinLoan returns the minimum loan principal as a decimal.
func (c *Config) MinLoan() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.MinLoanAmount)
	return d
}

// MaxLoan returns the maximum loan principal as a decimal.
func (c *Config) MaxLoan() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.MaxLoanAmount)
	return d
}

// MinContribution returns the minimum single contribution as a decimal.
func (c *Config) MinContribution() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.MinContribution)
	return d
}

// MaxContribution returns the maximum single contribution as a decimal.
func (c *Config) MaxContribution() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.MaxContribution)
	return d
}

// OverpaymentTolerance returns the allowed repayment overshoot multiplier.
func (c *Config) OverpaymentTolerance() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.OverpaymentTolerance)
	return d
}

// ScheduleCacheTTL returns the schedule cache expiry as a duration.
func (c *Config) ScheduleCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Business.ScheduleCacheTTL)
	return d
}
