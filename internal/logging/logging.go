// Package logging sets up the slog pipeline shared by the CLI and the
// simulation packages: a text log file, an optional GELF sink and
// per-record context attributes.
package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

const sessionLayout = "20060102_150405"

// SessionFilePath names a file for one CLI session, e.g. waypointsim.20260212_213836.log.
func SessionFilePath(dir, name, ext string, sessionStart time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.%s", name, sessionStart.Format(sessionLayout), ext))
}

// LogFilePath is the session log file inside logsDir.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return SessionFilePath(logsDir, appName, "log", sessionStart)
}
