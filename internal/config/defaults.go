package config

const (
	defaultDataDir          = "~/.local/share/liner"
	defaultLogDir           = "~/.local/share/liner/logs"
	defaultLogFormat        = "text"
	defaultLogLevel         = "info"
	defaultResolverMaxDepth = 32
)
