package util

import (
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
)

// LogLevel is the name of the environment variable controlling verbosity
const LogLevel = "LOG_LEVEL"

// ParseLogLevel returns the gommon log level for a level name
func ParseLogLevel(lvl string) (log.Lvl, error) {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return log.DEBUG, nil
	case "INFO":
		return log.INFO, nil
	case "WARN":
		return log.WARN, nil
	case "ERROR":
		return log.ERROR, nil
	case "OFF":
		return log.OFF, nil
	default:
		return log.INFO, fmt.Errorf("unknown log level: %s", lvl)
	}
}
