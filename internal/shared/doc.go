// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler for log
// assertions and fixtures for picks reports and history snapshots:
//
//	logger, logs := testutil.NewTestLogger(t)
//	dir := testutil.WriteHistory(t, testutil.SnapshotFor("20251222", testutil.SamplePicks()...))
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "history pruned")
package shared
