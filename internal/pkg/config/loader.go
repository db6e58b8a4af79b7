// Package config provides validated environment loading for worker
// configuration. Loading is fail-open: an invalid value produces a warning
// and the default, never a startup failure.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result holds a loaded configuration value together with fallback state.
// When FallbackApplied is true, Warning explains which value was rejected.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// loadEnv reads envKey, parses it with parse and validates it with validate.
// An unset or empty variable yields the default without a warning. A value
// that fails to parse or validate yields the default with a warning.
func loadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return Result[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}

	return Result[T]{Value: value}
}

// LoadString loads a string from an environment variable with optional validation.
func LoadString(envKey, defaultValue string, validate func(string) error) Result[string] {
	return loadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

// LoadInt loads an integer from an environment variable with optional validation.
func LoadInt(envKey string, defaultValue int, validate func(int) error) Result[int] {
	return loadEnv(envKey, defaultValue, strconv.Atoi, validate)
}

// LoadDuration loads a time.Duration from an environment variable with
// optional validation. The value uses Go duration syntax, e.g. "30m".
func LoadDuration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return loadEnv(envKey, defaultValue, time.ParseDuration, validate)
}

// LoadBool loads a boolean from an environment variable.
func LoadBool(envKey string, defaultValue bool) Result[bool] {
	return loadEnv(envKey, defaultValue, strconv.ParseBool, nil)
}
