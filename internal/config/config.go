package config

import "time"

type Config interface {
	GetBaseURL() string
	GetAppName() string
	GetDataFolder() string
	GetHTTPTimeout() time.Duration
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
