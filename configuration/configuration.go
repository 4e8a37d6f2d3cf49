package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Dir               string `usage:"data directory"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
	EnableCompression bool   `usage:"gzip responses when the client accepts it"`
	ApiKey            string `usage:"API key, empty disables authentication"`
	ApiSecret         string `usage:"API secret"`

	LogLevel      string `usage:"log level: debug, info, warn, error"`
	LogJson       bool   `usage:"log in JSON format"`
	LogFile       string `usage:"also log to this file, rotated"`
	LogMaxSize    int    `usage:"megabytes before rotating the log file"`
	LogMaxBackups int    `usage:"rotated log files to keep"`
	LogMaxAge     int    `usage:"days to keep rotated log files"`

	SearchDebounceMs int `usage:"milliseconds of typing silence before a search is applied"`
	PageSize         int `usage:"rows per page of paged grids, clamped to [100, 350]"`
	ViewTTLMinutes   int `usage:"close views not used for this many minutes, 0 keeps them forever"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:   "127.0.0.1:8080",
		Dir:        "data",
		ShowBanner: true,

		LogLevel:      "info",
		LogMaxSize:    100,
		LogMaxBackups: 5,
		LogMaxAge:     30,

		SearchDebounceMs: 250,
		PageSize:         150,
		ViewTTLMinutes:   60,
	}
}
