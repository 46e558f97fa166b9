package sheets

// Config holds configuration for the Google Sheets source.
type Config struct {
	// SpreadsheetID is the document id from the sheet URL.
	SpreadsheetID string `mapstructure:"spreadsheet_id" default:""`
	// GID identifies the tab within the document.
	GID string `mapstructure:"gid" default:"0"`
	// KeyColumn is the column holding the external key.
	KeyColumn string `mapstructure:"key_column" default:"article"`
	// TimeoutSeconds bounds each download.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Mandatory marks the source as required for a sync run to complete.
	Mandatory bool `mapstructure:"mandatory" default:"false"`
}
