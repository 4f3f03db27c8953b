package config

import "strings"

// AppVersion is the version of the tools, set at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "Pano"

// ConfigFileName is the name of the config file inside the config directory.
const ConfigFileName = "config.json"

// LogExt is the extension for the log files.
var LogExt = ".log"

// configDirName is the per-user directory holding config and logs.
var configDirName = "." + strings.ToLower(AppName)

// LogFileName returns the file name of the rotating release log.
func LogFileName() string {
	return strings.ToLower(AppName) + LogExt
}
