package config

import (
	"os"
	"time"
)

const (
	baseURLVar     = "EVENTRY_BASE_URL"
	appNameVar     = "EVENTRY_APP_NAME"
	folderEnvVar   = "EVENTRY_DATA_FOLDER"
	httpTimeoutVar = "EVENTRY_HTTP_TIMEOUT"
	envVar         = "EVENTRY_ENV"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "https://api.eventry.app")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Eventry Session")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, ".")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	timeout, err := time.ParseDuration(GetEnv(httpTimeoutVar, "15s"))
	if err != nil {
		return 15 * time.Second
	}
	return timeout
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "production")
}

func GetEnv(key, defaultValue string) string {
	if value, found := os.LookupEnv(key); found {
		return value
	}
	return defaultValue
}
