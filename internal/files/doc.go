// Package files finds screener reports and manages the published data
// directory.
//
// Discovery picks the newest ai_selected_stocks_*.txt report by name and
// lists dated history snapshots. Manager writes files atomically, prunes the
// history directory to a fixed number of snapshots and builds the history
// index consumed by the browser.
//
//	report, err := files.NewDiscovery(paths.BaseDir).LatestReport(paths.InputDir)
//	if errors.Is(err, files.ErrNoReportFound) {
//	    // nothing to publish today
//	}
package files
