package config

// Default returns the built-in configuration. Paths are expanded later
// by Load via normalize.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: "~/.cache/frontpage/staging",
			OutputDir:  "~/frontpage",
			LogDir:     "",
		},
		Archive: Archive{
			BaseURL: "https://api.nytimes.com",
			KeyFile: "~/.config/frontpage/nyt-api-key",
		},
		FrontPage: FrontPage{
			BaseURL:   "https://static01.nyt.com",
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		},
		Journal: Journal{
			Binary:   "dayone2",
			BrandTag: "frontpage",
		},
		Files: Files{
			EventsFile:   "~/.config/frontpage/historical-events.json",
			RegistryFile: "~/.config/frontpage/corrupted-dates.json",
		},
		Batch: Batch{
			SleepSeconds:  5,
			EventAttempts: 3,
			EventDelay:    30,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
