// Package config loads the picks tool configuration and resolves its paths.
//
// Sources are layered, later ones winning:
//
//	1. Default() values
//	2. a YAML file (config.yaml or configs/config.yaml, or MYX_CONFIG_FILE)
//	3. a .env file in the working directory, if present
//	4. MYX_* environment variables
//
// Environment names follow the struct nesting, for example
// MYX_SERVER_PORT, MYX_PARSER_LOCALE or MYX_HISTORY_DAYS_TO_KEEP.
//
// The loaded Config is checked with validator struct tags, including a
// "cron" tag that parses the refresh schedule. Paths are resolved against
// the base directory (the working directory unless configured):
//
//	cfg, err := config.Load()
//	paths, err := cfg.ResolvePaths()
//	fmt.Println(paths.LatestJSON) // <base>/website_data/ai_stocks_latest.json
package config
