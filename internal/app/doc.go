// Package app wires the provider pulse server together and owns its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from the YAML file and PULSE_* environment
//	2. Initialize the JSON logger and OpenTelemetry providers
//	3. Create the websocket hub, dataset service and health service
//	4. Build the chi router with its middleware stack
//	5. Configure the HTTP server
//
// Start loads the default workbook when one is configured and keeps it
// fresh in the background. A default that fails to parse is logged and
// the server still starts; readiness reports not_ready until it loads.
//
// # Usage
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := a.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then Stop drains the HTTP server,
// closes websocket clients, stops the refresher, flushes telemetry and
// closes the log file.
package app
