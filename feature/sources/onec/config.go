package onec

// Config holds configuration for the 1C API source.
type Config struct {
	// BaseURL is the root of the 1C HTTP service, e.g.
	// "https://erp.example.com".
	BaseURL string `mapstructure:"base_url" default:""`
	// Token is the API token sent as "Authorization: Token <token>".
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"180"`
	// PageSize is the limit parameter for paginated listing.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// RequestsPerSecond caps the request rate against the upstream.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"5"`
	// Burst is the rate limiter burst size.
	Burst int `mapstructure:"burst" default:"5"`
	// Mandatory marks the source as required for a sync run to complete.
	Mandatory bool `mapstructure:"mandatory" default:"true"`
}
