package services

import "errors"

// Picks service errors
var (
	ErrRefreshRunning    = errors.New("refresh already running")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrInvalidDate       = errors.New("invalid snapshot date, want YYYYMMDD")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
