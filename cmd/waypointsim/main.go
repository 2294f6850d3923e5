package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/OCAP2/waypointsim/internal/config"
	"github.com/OCAP2/waypointsim/internal/logging"
)

// AppName is used for log file names and the GELF facility.
const AppName = "waypointsim"

const usage = `usage: waypointsim <command> <configDir>

commands:
  run        drive the vehicle for sim.duration and record it
  trace      print one lap of the route as WKT and GeoJSON
  waypoints  print the route nodes and segment lengths
`

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

// runCLI dispatches a sub-command and returns the process exit code.
func runCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	command := strings.ToLower(args[0])
	configDir := args[1]

	var cmd func(*app) error
	switch command {
	case "run":
		cmd = cmdRun
	case "trace":
		cmd = cmdTrace
	case "waypoints":
		cmd = cmdWaypoints
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	a, err := newApp(command, configDir, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer a.close()

	if err := cmd(a); err != nil {
		a.log.Error("Command failed", "error", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// app carries what every sub-command needs once config and logging are set up.
type app struct {
	command string
	start   time.Time
	stdout  io.Writer

	logsDir    string
	logFile    *os.File
	slog       *logging.SlogManager
	log        *slog.Logger
	dbLog      zerolog.Logger
	closeFuncs []func()
}

func newApp(command, configDir string, stdout io.Writer) (*app, error) {
	a := &app{
		command: command,
		start:   time.Now(),
		stdout:  stdout,
		slog:    logging.NewSlogManager(),
	}

	if err := config.Load(configDir); err != nil {
		return nil, err
	}

	a.logsDir = config.GetString("logsDir")
	if err := os.MkdirAll(a.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs dir: %w", err)
	}

	logPath := logging.LogFilePath(a.logsDir, AppName, a.start)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	a.logFile = f
	a.closeFuncs = append(a.closeFuncs, func() { _ = f.Close() })

	var gelfWriter io.Writer
	if config.GetBool("graylog.enabled") {
		gelfWriter, err = logging.NewGelfWriter(config.GetString("graylog.address"), AppName)
		if err != nil {
			// keep going with the file log only
			fmt.Fprintf(f, "failed to connect to graylog: %v\n", err)
			gelfWriter = nil
		}
	}

	a.slog.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("command", a.command)}
	})
	a.slog.Setup(f, config.GetString("logLevel"), gelfWriter)
	a.log = a.slog.Logger()
	a.closeFuncs = append(a.closeFuncs, func() { _ = a.slog.Close(context.Background()) })

	a.dbLog = zerolog.New(f).With().Timestamp().Str("command", command).Logger()

	a.log.Info("Loaded config", "configDir", configDir, "log", logPath)
	return a, nil
}

// close runs cleanups in reverse order of registration.
func (a *app) close() {
	for i := len(a.closeFuncs) - 1; i >= 0; i-- {
		a.closeFuncs[i]()
	}
}

// dataPath places a per-session file next to the logs.
func (a *app) dataPath(name, ext string) string {
	return logging.SessionFilePath(a.logsDir, name, ext, a.start)
}
