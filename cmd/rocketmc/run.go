package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/rocketmc/internal/campaign"
	"github.com/san-kum/rocketmc/internal/casedir"
	"github.com/san-kum/rocketmc/internal/config"
	"github.com/san-kum/rocketmc/internal/generator"
	"github.com/san-kum/rocketmc/internal/jsbsim"
	"github.com/san-kum/rocketmc/internal/logging"
	"github.com/san-kum/rocketmc/internal/sim"
	"github.com/san-kum/rocketmc/internal/storage"
	"github.com/san-kum/rocketmc/internal/vehicle"
	"github.com/san-kum/rocketmc/internal/viz"
)

const logFile = "campaign.log"

// loadConfig layers preset, config file and explicit flags, later sources
// winning.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = root
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("simulator") {
		cfg.Simulator.Binary = simulator
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Simulator.Timeout = d
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// generators gives every worker its own seeded generator.
func generators(params generator.Params, seed int64) func(workerID int) campaign.DesignFunc {
	return func(workerID int) campaign.DesignFunc {
		g, err := generator.New(params, seed+int64(workerID))
		if err != nil {
			return func() (*vehicle.Rocket, error) { return nil, err }
		}
		return g.Generate
	}
}

func runCampaign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		return err
	}

	logOpts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Verbose: verbose}
	if live {
		logOpts.Path = filepath.Join(cfg.Root, logFile)
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := campaign.New(cfg.Root,
		casedir.New(jsbsim.Writer{}, cfg.CaseOptions()),
		sim.New(cfg.SimConfig(), logger),
		logger)

	c := campaign.Campaign{
		Iterations:   cfg.Iterations,
		Workers:      cfg.Workers,
		NewGenerator: generators(cfg.Generator, cfg.Seed),
	}

	logger.Info("starting campaign",
		zap.String("root", cfg.Root),
		zap.String("preset", cfg.Name),
		zap.Int("iterations", c.Iterations),
		zap.Int("workers", c.Workers),
		zap.Int64("seed", cfg.Seed))

	var report *campaign.Report
	if live {
		report, err = runLive(ctx, orch, c, cfg.Root)
	} else {
		report, err = orch.Run(ctx, c)
	}
	if err != nil {
		return err
	}

	if err := storage.WriteManifest(cfg.Root, storage.NewManifest(cfg.Root, cfg, report)); err != nil {
		logger.Warn("failed to write manifest", zap.Error(err))
	}

	fmt.Println(viz.RenderReport(report))
	if report.Interrupted() {
		fmt.Println(viz.StatusCancelled.Render("campaign interrupted; remaining iterations were not run"))
	}
	return nil
}

type runResult struct {
	report *campaign.Report
	err    error
}

func runLive(ctx context.Context, orch *campaign.Orchestrator, c campaign.Campaign, title string) (*campaign.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(viz.NewProgressModel(title, c.Iterations, cancel))
	orch.AddObserver(viz.NewFeed(p))

	done := make(chan runResult, 1)
	go func() {
		report, err := orch.Run(ctx, c)
		p.Send(viz.FinishedMsg{Report: report, Err: err})
		done <- runResult{report, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}

	cancel()
	res := <-done
	return res.report, res.err
}
