package logger

// SetupLogger initializes the default logger from CLI settings.
func SetupLogger(logLevel string, logJSON, logSource bool) Logger {
	cfg := DefaultConfig()
	cfg.Level = LogLevel(logLevel)
	cfg.JSON = logJSON
	cfg.AddSource = logSource
	Init(cfg)
	return GetDefault()
}
