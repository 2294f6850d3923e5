package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// osStdout is the console destination, swapped out in tests.
var osStdout io.Writer = os.Stdout

// SlogManager owns the process logger. Sinks are a text handler (the log
// file, or stdout when no file is open) and an optional GELF writer fed JSON.
type SlogManager struct {
	logger   *slog.Logger
	provider ContextProvider
	gelf     io.Writer
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel accepts slog level names in any case; anything else is info.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// SetContextProvider registers attributes added to every record.
// It takes effect on the next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.provider = p
}

// Setup replaces the logger. Calling it again drops the previous sinks
// without closing them.
func (m *SlogManager) Setup(file io.Writer, level string, gelf io.Writer) {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: utcTime,
	}
	m.gelf = gelf

	console := file
	if console == nil {
		console = osStdout
	}

	var sink slog.Handler = slog.NewTextHandler(console, opts)
	if gelf != nil {
		sink = NewMultiHandler(sink, slog.NewJSONHandler(gelf, opts))
	}
	if m.provider != nil {
		sink = NewContextHandler(sink, m.provider)
	}

	m.logger = slog.New(sink)
	m.logger.Info("Logging initialized", "level", opts.Level.Level().String())
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Component returns a logger tagged with the emitting subsystem.
func (m *SlogManager) Component(name string) *slog.Logger {
	return m.Logger().With("component", name)
}

// Close releases the GELF sink if it holds a connection.
func (m *SlogManager) Close(_ context.Context) error {
	if c, ok := m.gelf.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
