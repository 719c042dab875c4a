package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/olusegun-dev/bankcore/internal/logger"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultGatewayTimeout = 15 * time.Second
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the bankcore service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key shared with the auth service, used to verify access tokens
	SecretKey string

	// Payment gateway credentials and addresses
	PaystackSecretKey   string
	PaystackBaseURL     string
	PaystackCallbackURL string
	GatewayTimeout      time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		ListenAddr:     defaultListenAddr,
		Environment:    defaultEnvironment,
		GatewayTimeout: defaultGatewayTimeout,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":           setString(&c.ListenAddr),
		"DATABASE_URI":          setString(&c.DatabaseDSN),
		"SECRET_KEY":            setString(&c.SecretKey),
		"LOG_LEVEL":             setString(&c.LogLevel),
		"PAYSTACK_SECRET_KEY":   setString(&c.PaystackSecretKey),
		"PAYSTACK_BASE_URL":     setString(&c.PaystackBaseURL),
		"PAYSTACK_CALLBACK_URL": setString(&c.PaystackCallbackURL),
		"ENVIRONMENT":           setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("bankcore", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key shared with the auth service")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.PaystackSecretKey, "paystack-key", "p", c.PaystackSecretKey, "Paystack secret key")
	fs.StringVar(&c.PaystackBaseURL, "paystack-url", c.PaystackBaseURL, "Paystack API base URL")
	fs.StringVar(&c.PaystackCallbackURL, "paystack-callback", c.PaystackCallbackURL, "Paystack payment callback URL")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
