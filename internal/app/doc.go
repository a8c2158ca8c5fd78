// Package app wires the picks web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (.env, YAML file, MYX_* environment)
//	2. Initialize the JSON slog logger and OpenTelemetry providers
//	3. Resolve and create the data directories
//	4. Build the WebSocket hub, picks service and health service
//	5. Build the chi router and the HTTP server
//	6. Register the scheduled refresh when enabled
//
// # Usage
//
//	a, err := app.NewApplication(web.FS())
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives. The
// HTTP server, the hub and the scheduler then stop in turn and the
// telemetry providers are flushed. Errors are returned to the caller; the
// package never calls os.Exit.
package app
