package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rocketmc/internal/casedir"
	"github.com/san-kum/rocketmc/internal/generator"
	"github.com/san-kum/rocketmc/internal/sim"
)

var ErrInvalid = errors.New("config: invalid configuration")

const (
	DefaultRoot       = "campaign"
	DefaultIterations = 100
	DefaultWorkers    = 4
	DefaultPreset     = "vertical-shoot"
)

type Config struct {
	Name       string           `yaml:"name"`
	Root       string           `yaml:"root"`
	Iterations int              `yaml:"iterations"`
	Workers    int              `yaml:"workers"`
	Seed       int64            `yaml:"seed"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
	Run        RunConfig        `yaml:"run"`
	Generator  generator.Params `yaml:"generator"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type SimulatorConfig struct {
	Binary  string        `yaml:"binary"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
	LogName string        `yaml:"log_name"`
}

// RunConfig controls the simulated time window and telemetry rate written
// into every case.
type RunConfig struct {
	End        float64 `yaml:"end"`
	Dt         float64 `yaml:"dt"`
	OutputRate float64 `yaml:"output_rate"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	cfg := GetPreset(DefaultPreset)
	cfg.Name = ""
	return cfg
}

// base fills everything except the generator.
func base() *Config {
	return &Config{
		Root:       DefaultRoot,
		Iterations: DefaultIterations,
		Workers:    DefaultWorkers,
		Seed:       1,
		Simulator: SimulatorConfig{
			Binary:  sim.DefaultBinary,
			Args:    sim.DefaultArgs(),
			Timeout: sim.DefaultTimeout,
			LogName: sim.DefaultLogName,
		},
		Run: RunConfig{
			End:        casedir.DefaultEnd,
			Dt:         casedir.DefaultDt,
			OutputRate: casedir.DefaultOutputRate,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("%w: root directory is required", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalid, c.Iterations)
	}
	if c.Simulator.Binary == "" {
		return fmt.Errorf("%w: simulator binary is required", ErrInvalid)
	}
	if c.Simulator.Timeout <= 0 {
		return fmt.Errorf("%w: simulator timeout must be positive, got %s", ErrInvalid, c.Simulator.Timeout)
	}
	if c.Run.End <= 0 || c.Run.Dt <= 0 || c.Run.Dt > c.Run.End {
		return fmt.Errorf("%w: run window end=%g dt=%g", ErrInvalid, c.Run.End, c.Run.Dt)
	}
	if c.Run.OutputRate <= 0 {
		return fmt.Errorf("%w: output rate must be positive, got %g", ErrInvalid, c.Run.OutputRate)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Binary:  c.Simulator.Binary,
		Args:    append([]string(nil), c.Simulator.Args...),
		Timeout: c.Simulator.Timeout,
		LogName: c.Simulator.LogName,
	}
}

func (c *Config) CaseOptions() casedir.Options {
	return casedir.Options{
		End:        c.Run.End,
		Dt:         c.Run.Dt,
		OutputRate: c.Run.OutputRate,
	}
}
