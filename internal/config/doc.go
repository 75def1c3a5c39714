// Package config loads Provider Pulse configuration.
//
// # Configuration Sources
//
// Values are layered in this order, later sources winning:
//
//	1. Default()
//	2. a YAML file: $PULSE_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. PULSE_* environment variables
//
// # Environment Variables
//
// Variables follow the struct nesting, for example:
//
//	PULSE_SERVER_PORT=8080
//	PULSE_INGEST_THRESHOLD=20
//	PULSE_INGEST_DEFAULT_PATH=/data/providers.xlsx
//	PULSE_INGEST_REFRESH_INTERVAL=5m
//	PULSE_TELEMETRY_TRACES_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
