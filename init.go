package vitaltrend

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/raykavin/vitaltrend/pkg/logger/logrus"
	"github.com/raykavin/vitaltrend/pkg/logger/zerolog"
)

const (
	// Default configuration values
	defaultLogLevel      = "debug"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
	defaultLogBackend    = "zerolog"
)

// Environment variable names
const (
	envLogLevel      = "VITALTREND_LOG_LEVEL"
	envLogTimeFormat = "VITALTREND_LOG_TIME_FORMAT"
	envLogColor      = "VITALTREND_LOG_COLOR"
	envLogJSON       = "VITALTREND_LOG_JSON"
	envLogBackend    = "VITALTREND_LOG_BACKEND"
)

func init() {
	// Initialize the logger with configuration from environment variables
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// initLogger creates a new logger instance configured from environment variables
func initLogger() (logger.Logger, error) {
	config, err := loggerConfig()
	if err != nil {
		return nil, err
	}

	return NewLogger(getEnvWithDefault(envLogBackend, defaultLogBackend), config)
}

// loggerConfig reads the logger configuration from environment variables
func loggerConfig() (logger.Config, error) {
	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return logger.Config{}, fmt.Errorf("invalid %s: %w", envLogColor, err)
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return logger.Config{}, fmt.Errorf("invalid %s: %w", envLogJSON, err)
	}

	return logger.Config{
		Level:      getEnvWithDefault(envLogLevel, defaultLogLevel),
		TimeFormat: getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat),
		Colored:    logColored,
		JSON:       logJSON,
	}, nil
}

// NewLogger creates a logger with the named backend, zerolog or logrus
func NewLogger(backend string, config logger.Config) (logger.Logger, error) {
	switch strings.ToLower(backend) {
	case "zerolog":
		log, err := zerolog.New(config)
		if err != nil {
			return nil, err
		}
		return log, nil
	case "logrus":
		log, err := logrus.New(config)
		if err != nil {
			return nil, err
		}
		return log, nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
