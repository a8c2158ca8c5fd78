// Package http contains the HTTP handlers of the picks web service.
//
// Handlers stay thin: they decode the request, call a service through a
// small interface and render JSON with go-chi/render. Service errors are
// mapped to API errors and answered as RFC 7807 problem documents by the
// shared errors.ErrorHandler, so every failure carries an error_code and
// the request's trace_id.
//
// Routes served by this package:
//
//	GET  /api/picks/latest           current snapshot
//	GET  /api/picks/history          history index, newest first
//	GET  /api/picks/history/{date}   snapshot for a YYYYMMDD date
//	GET  /api/picks/weekly           seven day summary
//	GET  /api/picks/export?format=   csv, xlsx or json download
//	POST /api/picks/refresh          parse the newest report now
//	GET  /api/health, /api/version   service status
//	POST /api/logs                   browser-side events
//	GET  /weekly                     rendered weekly digest
//	GET  /metrics                    Prometheus exposition
package http
