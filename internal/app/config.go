package app

import (
	"fmt"
	"time"
)

// logicalDateLayout is the accepted flag format for logical dates.
const logicalDateLayout = "2006-01-02T15:04:05"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DagID       string
	TaskID      string
	RunID       string
	LogicalDate string // parsed with logicalDateLayout; empty means absent
	TryNumber   int
	Owner       []string
	Email       []string

	SettingsPath string // hcl file with a context_vars block
	Command      []string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogicalDate != "" {
		if _, err := time.Parse(logicalDateLayout, cfg.LogicalDate); err != nil {
			return nil, fmt.Errorf("invalid logical-date %q: expected format %s", cfg.LogicalDate, logicalDateLayout)
		}
	}
	if cfg.TryNumber < 0 {
		return nil, fmt.Errorf("try-number cannot be negative, got %d", cfg.TryNumber)
	}
	return &cfg, nil
}
