// Package services implements the business logic between the HTTP handlers
// and the parsing pipeline.
//
// DatasetService turns workbooks into in-memory datasets and answers
// record, summary and warning queries over them. It publishes lifecycle
// events through an EventPublisher, normally the websocket hub, and
// records ingest metrics and spans through OpenTelemetry.
//
// HealthService backs the health, readiness, liveness and version
// endpoints.
//
// Services return the sentinel errors in errors.go wrapped with context;
// handlers match them with errors.Is and translate them into problem
// responses.
package services
