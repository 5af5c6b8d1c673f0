package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/plus3/linker/engine"
	"github.com/plus3/linker/internal/config"
	"github.com/plus3/linker/scripting"
	"github.com/plus3/linker/snapshot"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type runOptions struct {
	Config *config.Config
	// EntitiesFlag is the -entities value, or -1 when the flag was not given.
	// It wins over both the scene and the config file.
	EntitiesFlag   int
	GCPauseMetrics bool
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for. Overrides the config.")
	entityCount := flag.Int("entities", -1, "The initial number of entities to create. Overrides the scene and config.")
	scenePath := flag.String("scene", "", "A JSON or YAML scene document. Overrides the config.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *duration > 0 {
		cfg.Run.Duration = *duration
	}
	if *scenePath != "" {
		cfg.Run.Scene = *scenePath
	}

	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := run(ctx, runOptions{
		Config:         cfg,
		EntitiesFlag:   *entityCount,
		GCPauseMetrics: *gcPauseMetrics,
	}, log)
	if err != nil {
		log.Error("stress test failed", zap.Error(err))
		exitCode = 1
		return
	}

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Error("generate report", zap.Error(err))
		exitCode = 1
		return
	}
	fmt.Println("--- End of Report ---")
}

func run(ctx context.Context, opts runOptions, log *zap.Logger) (*Report, error) {
	cfg := opts.Config
	report := &Report{
		RunID:          uuid.NewString(),
		Duration:       cfg.Run.Duration,
		TickRate:       cfg.Run.TickRate,
		Entities:       cfg.Run.Entities,
		Scripts:        cfg.Run.Scripts,
		GCPauseMetrics: opts.GCPauseMetrics,
	}
	log = log.With(zap.String("run_id", report.RunID))

	var waves waveQueue
	if cfg.Run.Scene != "" {
		scene, err := loadScene(cfg.Run.Scene)
		if err != nil {
			return nil, err
		}
		report.Scene = scene.Name
		if scene.Entities >= 0 {
			report.Entities = scene.Entities
		}
		waves.waves = scene.Waves
		log.Info("scene loaded",
			zap.String("scene", scene.Name),
			zap.Int("entities", report.Entities),
			zap.Int("waves", len(scene.Waves)))
	}
	if opts.EntitiesFlag >= 0 {
		report.Entities = opts.EntitiesFlag
	}

	e := engine.NewEngine(engine.Options{
		InitialCapacity: cfg.Engine.InitialCapacity,
		MaxCapacity:     cfg.Engine.MaxCapacity,
		Logger:          log.Named("engine"),
	})

	var scripts []*scripting.LuaSystem
	defer func() {
		for _, s := range scripts {
			s.Close()
		}
	}()
	for _, path := range cfg.Run.Scripts {
		system, err := scripting.NewLuaSystem(path, log.Named("lua"))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, system)
		e.Register(system)
	}

	log.Info("populating storage", zap.Int("entities", report.Entities))
	spawnStart := time.Now()
	if err := spawn(e, report.Entities); err != nil {
		return nil, fmt.Errorf("initial population: %w", err)
	}
	report.SpawnTime = time.Since(spawnStart)

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", cfg.Run.Duration))
	runCtx, cancel := context.WithTimeout(ctx, cfg.Run.Duration)
	defer cancel()

	var ticker *time.Ticker
	if cfg.Run.TickRate > 0 {
		ticker = time.NewTicker(cfg.Run.TickRate)
		defer ticker.Stop()
	}

	startTime := time.Now()
	lastFrameTime := startTime
	wavesExhausted := false

Loop:
	for {
		if ticker != nil {
			select {
			case <-runCtx.Done():
				break Loop
			case <-ticker.C:
			}
		} else {
			select {
			case <-runCtx.Done():
				break Loop
			default:
			}
		}

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		e.Update(deltaTime.Seconds())
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		report.TotalUpdates++

		if n, released := waves.due(time.Since(startTime)); released > 0 && !wavesExhausted {
			report.WavesSpawned += released
			if err := spawn(e, n); err != nil {
				log.Warn("wave spawn stopped", zap.Int("wave_size", n), zap.Error(err))
				wavesExhausted = true
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Engine = e.CollectStats()
	report.Systems = e.Scheduler().GetStats().Systems
	for _, s := range scripts {
		report.ScriptErrors += s.Errors()
	}

	log.Info("simulation finished",
		zap.Int64("updates", report.TotalUpdates),
		zap.Int("count", report.Engine.Count),
		zap.Int("growth_events", report.Engine.GrowthEvents))

	if cfg.Snapshot.Enabled {
		id, err := saveSnapshot(ctx, cfg.Snapshot.Path, e, log)
		if err != nil {
			return nil, err
		}
		report.SnapshotID = id
	}

	return report, nil
}

func spawn(e *engine.Engine, n int) error {
	for range n {
		if _, err := e.TrySpawn(); err != nil {
			return err
		}
	}
	return nil
}

func saveSnapshot(ctx context.Context, path string, e *engine.Engine, log *zap.Logger) (string, error) {
	store, err := snapshot.Open(ctx, path, log.Named("snapshot"))
	if err != nil {
		return "", fmt.Errorf("open snapshot store: %w", err)
	}
	snap, err := store.Save(ctx, e)
	err = errors.Join(err, store.Close())
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return snap.ID, nil
}

// newLogger builds the run's root logger. Console output is meant for a
// terminal watching the run; json output for collecting many runs.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level: %w", err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		zapCfg.Sampling = nil
	case "console", "":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("logging format %q: want console or json", cfg.Format)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named("engine-stress"), nil
}
