// Package services implements the business logic layer between the HTTP
// handlers, the command line tools and the data directory.
//
// # Available Services
//
//	- PicksService: runs the refresh pipeline and serves published picks
//	- HealthService: reports process, data directory and hub health
//
// # Refresh Pipeline
//
// PicksService.Refresh performs one daily update:
//
//	1. find the newest ai_selected_stocks_*.txt report in the input directory
//	2. parse it with the configured vocabulary
//	3. write ai_stocks_latest.json and history/ai_stocks_YYYYMMDD.json
//	4. prune history to the retention limit and rewrite history_index.json
//	5. regenerate weekly_performance.json and weekly_report.html
//	6. optionally commit and push the data directory
//	7. broadcast picks.updated to connected browsers
//
// A report that yields no picks stops the run before anything is written;
// the returned error wraps dataprocessing.ErrNoPicks. Steps 4 to 7 are
// best effort and only log their failures.
//
// # Error Handling
//
// Services return sentinel errors (ErrSnapshotNotFound, ErrInvalidDate,
// ErrRefreshRunning, ErrUnsupportedFormat) that handlers map to RFC 7807
// problem responses.
package services
