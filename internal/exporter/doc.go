// Package exporter writes picks and weekly summaries in their published
// formats.
//
// SnapshotWriter stores the JSON documents of the data directory: the latest
// snapshot with its dated history copy, the weekly summary and the history
// index. WriteCSV and WriteXLSX export a snapshot as a table for download.
// DigestRenderer produces the weekly HTML report.
package exporter
