package sms

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DriverPanel selects the provider panel HTTP backend.
	DriverPanel = "panel"
	// DriverLog selects the development log sink.
	DriverLog = "log"
)

// ErrUnknownDriver indicates an unsupported SMS driver.
var ErrUnknownDriver = errors.New("sms: unknown driver")

// FactoryOptions groups configuration for SMS drivers.
type FactoryOptions struct {
	// Panel configures the panel backend.
	Panel PanelConfig
	// Logger backs the log driver.
	Logger *slog.Logger
}

// NewFromDriver constructs an SMS implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (SMS, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPanel:
		return NewPanel(opts.Panel)
	case DriverLog:
		return NewLog(opts.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
