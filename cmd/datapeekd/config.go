package main

import (
	"datapeek/lib/catalog"
	"datapeek/lib/fetchstore"
)

type Config struct {
	// Addr is the listen address of the dashboard http server.
	Addr    string `json:"addr"`
	DataDir string `json:"data_dir"`
	// Refresh is an optional cron spec, e.g. "@every 6h". When set,
	// every source with a url is re-fetched on that schedule.
	Refresh  string            `json:"refresh"`
	Database fetchstore.Config `json:"database"`
	Sources  []catalog.Source  `json:"sources"`
}
