package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCAP2/waypointsim/internal/config"
	intOtel "github.com/OCAP2/waypointsim/internal/otel"
	"github.com/OCAP2/waypointsim/internal/sim"
	"github.com/OCAP2/waypointsim/internal/storage"
	"github.com/OCAP2/waypointsim/internal/waypoint"
)

func loadRoute() (*waypoint.List, error) {
	points, err := config.GetWaypoints()
	if err != nil {
		return nil, err
	}
	return waypoint.New(points...), nil
}

// setupMetrics installs the OTel meter provider when enabled. Metrics are
// written to a file next to the logs.
func setupMetrics(a *app) error {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return nil
	}

	path := a.dataPath("metrics", "json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}

	provider, err := intOtel.New(intOtel.Config{
		Enabled:        true,
		ServiceName:    otelCfg.ServiceName,
		ExportInterval: otelCfg.ExportInterval,
		MetricWriter:   f,
	})
	if err != nil {
		_ = f.Close()
		return err
	}

	a.closeFuncs = append(a.closeFuncs, func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			a.log.Warn("Failed to shut down OTel provider", "error", err)
		}
		_ = f.Close()
	})
	a.log.Info("OTel provider initialized", "file", path)
	return nil
}

func cmdRun(a *app) error {
	route, err := loadRoute()
	if err != nil {
		return err
	}
	if err := setupMetrics(a); err != nil {
		return err
	}

	storageCfg := config.GetStorageConfig()
	if storageCfg.Type == "sqlite" && storageCfg.SQLite.DumpPath == "" && storageCfg.SQLite.Path == "" {
		storageCfg.SQLite.DumpPath = a.dataPath(AppName, "db")
	}

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		LogManager: a.slog,
		DBLogger:   a.dbLog,
		BackupDir:  a.logsDir,
	})
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			a.log.Warn("Failed to close storage", "error", err)
		}
	}()
	a.log.Info("Storage backend initialized", "type", storageCfg.Type)

	runner, err := sim.New(sim.Config{
		Sim:       config.GetSimConfig(),
		MoverKind: config.GetMoverKind(),
		Mover:     config.GetMoverConfig(),
	}, route, backend, a.slog.Component("sim"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "run %d: %s mover, %d ticks, %d samples, node %d, position %.3f,%.3f,%.3f\n",
		res.Run.ID,
		res.Run.MoverKind,
		res.Ticks,
		res.Recorded,
		res.Final.CurrentNode,
		res.Final.Position.X(), res.Final.Position.Y(), res.Final.Position.Z(),
	)
	if res.Cancelled {
		fmt.Fprintln(a.stdout, "run cancelled before the configured duration")
	}
	if exp, ok := backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
		fmt.Fprintf(a.stdout, "recording: %s\n", exp.ExportedFilePath())
	}
	return nil
}
