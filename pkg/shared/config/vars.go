package config

// Environment variables recognised by egressguard.
const (
	EnvGlobs     = "EGRESSGUARD_GLOBS"
	EnvWhitelist = "EGRESSGUARD_WHITELIST"
	EnvConfig    = "EGRESSGUARD_CONFIG"
	EnvRoot      = "EGRESSGUARD_ROOT"
	EnvLogLevel  = "EGRESSGUARD_LOG_LEVEL"
	EnvLogFormat = "EGRESSGUARD_LOG_FORMAT"
)

// Log output formats accepted by logger.format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)
