package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	ResourceCreate    time.Duration // Timeout for fallback resource creation (workspace polls are slow)
	Verify            time.Duration // Overall budget for the verification probe
	RetryMaxAttempts  int           // Maximum number of verification retry attempts
	RetryInitialDelay time.Duration // Initial delay between verification retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - AZBIND_TIMEOUT_RESOURCE_CREATE (default: 20m)
//   - AZBIND_TIMEOUT_VERIFY (default: 5m)
//   - AZBIND_RETRY_MAX_ATTEMPTS (default: 5)
//   - AZBIND_RETRY_INITIAL_DELAY (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ResourceCreate:    parseDuration("AZBIND_TIMEOUT_RESOURCE_CREATE", 20*time.Minute),
		Verify:            parseDuration("AZBIND_TIMEOUT_VERIFY", 5*time.Minute),
		RetryMaxAttempts:  parseInt("AZBIND_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("AZBIND_RETRY_INITIAL_DELAY", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return n
}
