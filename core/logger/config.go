package logger

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `mapstructure:"level" default:"info"`

	// Format selects the encoding: json or console.
	Format string `mapstructure:"format" default:"json"`
}
