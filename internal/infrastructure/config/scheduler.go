package config

import "time"

// SchedulerConfig tunes the cooperative ship loop
type SchedulerConfig struct {
	// Upper bound for a single scheduler sleep; keeps the loop responsive
	// to new heap heads and to cancellation
	MaxSleep time.Duration `mapstructure:"max_sleep"`

	// Lower bound for a scheduler sleep
	MinSleep time.Duration `mapstructure:"min_sleep"`

	// Readiness bump applied when an action fails for a tick
	FailureBackoff time.Duration `mapstructure:"failure_backoff"`
}

// DaemonConfig holds daemon process settings
type DaemonConfig struct {
	// PID file path for single-instance enforcement
	PIDFile string `mapstructure:"pid_file"`
}
