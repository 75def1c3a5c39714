package config

// Application constants
const (
	AppName     = "Provider Pulse"
	ServiceName = "provider-pulse"

	// EnvPrefix namespaces every environment variable, e.g. PULSE_SERVER_PORT
	EnvPrefix = "PULSE"

	DefaultLogFile = "logs/app.log"

	// DefaultThreshold is the visit length in minutes named by report headers
	DefaultThreshold = 20

	// DefaultMaxUploadBytes caps an uploaded workbook at 10 MiB
	DefaultMaxUploadBytes = 10 << 20
)
