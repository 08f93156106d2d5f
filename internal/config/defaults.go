package config

const (
	defaultDBPath           = "~/.local/share/loadfinder/loads.db"
	defaultLogDir           = "~/.local/share/loadfinder/logs"
	defaultAPIBind          = "127.0.0.1:8642"
	defaultFeedPath         = "~/.local/share/loadfinder/sample_loads.json"
	defaultLogFormat        = "auto"
	defaultLogLevel         = "info"
	defaultRateMin          = 0.0
	defaultRateMax          = 3000.0
	defaultD2PMin           = 0.0
	defaultD2PMax           = 40.0
	defaultRateWeight       = 0.7
	defaultD2PWeight        = 0.3
	defaultMissingPenalty   = 2.0
	defaultResultLimit      = 200
	defaultMaxResultLimit   = 1000
	defaultOpTimeoutSeconds = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DBPath:  defaultDBPath,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Ingest: Ingest{
			FeedPath: defaultFeedPath,
		},
		Scoring: Scoring{
			RateMin:           defaultRateMin,
			RateMax:           defaultRateMax,
			D2PMin:            defaultD2PMin,
			D2PMax:            defaultD2PMax,
			RateWeight:        defaultRateWeight,
			D2PWeight:         defaultD2PWeight,
			MissingD2PPenalty: defaultMissingPenalty,
		},
		Limits: Limits{
			DefaultLimit:     defaultResultLimit,
			MaxLimit:         defaultMaxResultLimit,
			OpTimeoutSeconds: defaultOpTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
