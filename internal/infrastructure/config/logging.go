package config

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Directory for operator log files (trades.log, credits.log)
	Dir string `mapstructure:"dir"`
}
