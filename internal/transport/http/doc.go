// Package http implements the HTTP handlers of the provider pulse service.
//
// Handlers stay thin: they parse and validate the request, call a service,
// and render either the success envelope
//
//	{"status": "success", "data": ..., "count": n}
//
// or an RFC 7807 problem through errors.ErrorHandler. Service sentinel
// errors are translated to API errors in one place, toAPIError.
//
// Routes:
//
//	POST   /api/datasets                  upload a workbook (multipart "file")
//	GET    /api/datasets                  list datasets
//	GET    /api/datasets/{id}             dataset metadata
//	DELETE /api/datasets/{id}             drop a dataset
//	GET    /api/datasets/{id}/records     filtered records
//	GET    /api/datasets/{id}/providers   provider names
//	GET    /api/datasets/{id}/weeks       week labels in order
//	GET    /api/datasets/{id}/summary     aggregate and trend
//	GET    /api/datasets/{id}/warnings    advisory warnings
//	POST   /api/weeks/order               order arbitrary week labels
//	GET    /api/health[/ready|/live]      health probes
//	GET    /api/version                   build information
//	GET    /metrics                       Prometheus scrape
//	GET    /ws                            dataset event stream
package http
