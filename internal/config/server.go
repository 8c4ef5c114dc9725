// Package config provides configuration management for licence-manager.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment Environment
	ListenAddr  string
	DatabaseURL string

	// CompanyDomains are the email domains considered internal. Empty
	// means every domain is treated as internal.
	CompanyDomains []string

	// ReconcileSchedule is the cron expression for automatic runs.
	// Empty disables the scheduler.
	ReconcileSchedule string

	// ReconcileWorkers bounds how many vendors reconcile concurrently.
	ReconcileWorkers int

	// FuzzyMinScore overrides the minimum fuzzy-name score for a
	// suggestion; 0 keeps the engine default.
	FuzzyMinScore float64

	// PriceBookPath points at an optional YAML price book for
	// license-type component pricing.
	PriceBookPath string
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	workers := getEnvInt("RECONCILE_WORKERS", 4)
	if workers <= 0 {
		workers = 4
	}

	fuzzyMinScore := getEnvFloat("FUZZY_MIN_SCORE", 0)
	if fuzzyMinScore < 0 || fuzzyMinScore > 1 {
		fuzzyMinScore = 0
	}

	return ServerConfig{
		Environment:       env,
		ListenAddr:        getEnvString("LISTEN_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CompanyDomains:    splitList(os.Getenv("COMPANY_DOMAINS")),
		ReconcileSchedule: os.Getenv("RECONCILE_SCHEDULE"),
		ReconcileWorkers:  workers,
		FuzzyMinScore:     fuzzyMinScore,
		PriceBookPath:     os.Getenv("PRICE_BOOK_PATH"),
	}
}

// splitList parses a comma-separated environment value into trimmed,
// lowercased entries, dropping empties.
func splitList(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvString reads a string from an environment variable, returning the default if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvFloat reads a float from an environment variable, returning the default if unset or invalid.
func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
