// Package config holds the library's tunable defaults: parse limits and
// rewrite behavior. It mirrors the shape of an application config object
// (Load + Validate) even though there is no environment to read from —
// callers construct Options directly and Load only supplies defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/logger"
)

// Options holds parse and rewrite tunables shared by every container
// reader/writer.
type Options struct {
	// MaxElementDepth bounds recursive descent into the element tree.
	MaxElementDepth int
	// MaxElementSize rejects any single element/atom/page whose declared
	// size exceeds this, before any allocation is attempted.
	MaxElementSize int64
	// PaddingReserve is how many bytes of padding a full-rewrite leaves
	// behind so a later small edit can go in-place.
	PaddingReserve int64
	// VerifyChecksums enables optional CRC verification (Ogg page CRC32)
	// during parse; failures are recorded as diagnostics, never fatal.
	VerifyChecksums bool
	// LogLevel / LogFormat configure the optional operational logger;
	// see internal/logger.
	LogLevel  string
	LogFormat string
}

// Load returns the default Options. Named Load (rather than Default) to
// mirror the shape callers of the rest of this codebase's ambient stack
// expect from a configuration entry point.
func Load() *Options {
	return &Options{
		MaxElementDepth: constants.DefaultMaxElementDepth,
		MaxElementSize:  constants.DefaultMaxElementSize,
		PaddingReserve:  constants.DefaultPaddingReserve,
		VerifyChecksums: true,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Validate validates the configuration and returns a single error
// describing every problem found.
func (c *Options) Validate() error {
	var errs []string

	if c.MaxElementDepth <= 0 {
		errs = append(errs, "MaxElementDepth must be greater than 0")
	}
	if c.MaxElementSize <= 0 {
		errs = append(errs, "MaxElementSize must be greater than 0")
	}
	if c.PaddingReserve < 0 {
		errs = append(errs, "PaddingReserve must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("LogLevel must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		errs = append(errs, fmt.Sprintf("LogFormat must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// NewLogger builds the operational logger described by LogLevel/LogFormat.
// Every container's Parse/ApplyChanges pulls one of these from its
// Options rather than reaching for a package-level global.
func (c *Options) NewLogger() *logger.Logger {
	return logger.New(logger.Config{Level: c.LogLevel, Format: c.LogFormat})
}
