package config

import "time"

// Application info
const (
	AppName    = "MYX AI Picks"
	AppVersion = "1.2.0"
	EnvPrefix  = "MYX"
)

// File names inside the data directory
const (
	LatestFileName       = "ai_stocks_latest.json"
	HistoryDirName       = "history"
	HistoryIndexFileName = "history_index.json"
	WeeklyJSONFileName   = "weekly_performance.json"
	WeeklyHTMLFileName   = "weekly_report.html"
	ReportFilePrefix     = "ai_selected_stocks_"
	ReportFileSuffix     = ".txt"
)

// Defaults
const (
	DefaultDataDir        = "website_data"
	DefaultLogsDir        = "logs"
	DefaultHistoryKeep    = 30
	DefaultRefreshCron    = "0 30 18 * * 1-5"
	DefaultGitRemote      = "origin"
	DefaultGitBranch      = "main"
	DefaultRefreshTimeout = 2 * time.Minute
)
