package syncrun

// Config holds orchestration and conflict-policy configuration.
type Config struct {
	// IntervalMinutes is the scheduled sync interval. Zero disables the
	// schedule, leaving only external triggers.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"1440"`

	// RetryLimit bounds fetch/write attempts per source per run.
	RetryLimit int `mapstructure:"retry_limit" default:"3"`

	// RetryBackoffMS is the initial backoff between retries.
	RetryBackoffMS int `mapstructure:"retry_backoff_ms" default:"500"`

	// Priority is the global source precedence, highest first
	// (comma-separated source names).
	Priority string `mapstructure:"priority" default:"sheets,onec"`

	// FieldPriority optionally overrides precedence per field, e.g.
	// "name=onec,sheets;brand=sheets,onec".
	FieldPriority string `mapstructure:"field_priority" default:""`

	// Prune deletes entities that disappeared from every source.
	Prune bool `mapstructure:"prune" default:"false"`
}
