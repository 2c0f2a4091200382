package fs

import (
	"strings"
)

// Global
var (
	// globalConfig for the server
	globalConfig = NewConfig()

	// Version of choreoserve, overridden at link time
	Version = "v1.0.0-DEV"
)

// ConfigInfo is the process wide configuration
type ConfigInfo struct {
	LogLevel   LogLevel
	UseJSONLog bool
}

// NewConfig creates a new config with everything set to the default
// value.  These are the ultimate defaults and are overridden by the
// config module.
func NewConfig() *ConfigInfo {
	c := new(ConfigInfo)

	// Set any values which aren't the zero for the type
	c.LogLevel = LogLevelNotice

	return c
}

// GetConfig returns the process wide config
func GetConfig() *ConfigInfo {
	return globalConfig
}

// OptionToEnv converts a flag name into the environment variable
// which can set its default, eg "log-file" -> "CHOREOSERVE_LOG_FILE"
func OptionToEnv(name string) string {
	return "CHOREOSERVE_" + strings.ToUpper(strings.Replace(name, "-", "_", -1))
}
