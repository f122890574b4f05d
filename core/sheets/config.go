package sheets

// Config holds configuration for the Google Sheets connection.
type Config struct {
	// CredentialsJSON is an inline service account key. It takes precedence over CredentialsFile.
	CredentialsJSON string `mapstructure:"credentials_json" default:""`
	// CredentialsFile is the path to a service account key file.
	CredentialsFile string `mapstructure:"credentials_file" default:"service-account.json"`
	// SpreadsheetID identifies the spreadsheet to sync.
	SpreadsheetID string `mapstructure:"spreadsheet_id" default:""`
	// SheetName is the worksheet (tab) inside the spreadsheet.
	SheetName string `mapstructure:"sheet_name" default:"Sheet1"`
	// TimeoutSeconds bounds every API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
