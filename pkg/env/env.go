// Package env reads process-level settings that sit outside config.Load,
// such as the log format and the host identity.
package env

import "os"

const (
	LogFormatVar = "TABLESIGHT_LOG_FORMAT"
	InstanceVar  = "TABLESIGHT_INSTANCE_ID"
)

// Get returns the value of key or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// ConsoleLogs reports whether human-readable log output was requested.
func ConsoleLogs() bool {
	return Get(LogFormatVar, "json") == "console"
}

// InstanceID names this process in logs and lock values. It prefers an
// explicit id, then the platform dyno name, then the hostname.
func InstanceID() string {
	for _, key := range []string{InstanceVar, "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
