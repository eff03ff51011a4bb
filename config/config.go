// Package config provides unified configuration loading for fusion-sim.
// Sources in order: defaults, YAML file, .env file, FUSION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/parameter"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Advisor modes
const (
	AdvisorOff   = "off"
	AdvisorRule  = "rule"
	AdvisorHTTP  = "http"
	AdvisorChain = "chain" // http first, rule on failure
)

// Store drivers
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains all fusion-sim configuration settings.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Advisor    AdvisorConfig    `json:"advisor" yaml:"advisor"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Audio      AudioConfig      `json:"audio" yaml:"audio"`
}

// SimulationConfig seeds the episode controller and its scheduler.
type SimulationConfig struct {
	// Seed drives the initial ensemble and the per-episode physics stream.
	Seed     uint64        `json:"seed" yaml:"seed"`
	Settings core.Settings `json:"settings" yaml:"settings"`

	// AutoResetOnFault returns a faulted controller to idle on the next tick.
	AutoResetOnFault bool `json:"auto_reset_on_fault" yaml:"auto_reset_on_fault"`

	TickInterval      time.Duration `json:"tick_interval" yaml:"tick_interval"`
	TelemetryInterval time.Duration `json:"telemetry_interval" yaml:"telemetry_interval"`
	HistoryCapacity   int           `json:"history_capacity" yaml:"history_capacity"`
	MaxCatchUpSteps   int           `json:"max_catch_up_steps" yaml:"max_catch_up_steps"`
}

// AdvisorConfig selects and tunes the advisory collaborator.
type AdvisorConfig struct {
	// Mode is one of "off", "rule", "http", "chain".
	Mode string `json:"mode" yaml:"mode"`

	// Endpoint is the advisory service URL used by "http" and "chain".
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey supports ${VAR} syntax for env vars.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Interval between periodic consults; zero disables them.
	Interval time.Duration `json:"interval" yaml:"interval"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`

	// Window is the telemetry history length sent with each request.
	Window int `json:"window" yaml:"window"`

	// PastEpisodes is how many ranked summaries accompany each request.
	PastEpisodes int `json:"past_episodes" yaml:"past_episodes"`
}

// RedactedAPIKey returns the API key with most characters masked.
func (c AdvisorConfig) RedactedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) < 12 {
		return "(set)"
	}
	return c.APIKey[:4] + "..." + c.APIKey[len(c.APIKey)-4:]
}

// String implements fmt.Stringer to keep the API key out of logs.
func (c AdvisorConfig) String() string {
	return fmt.Sprintf("AdvisorConfig{Mode:%s, Endpoint:%s, APIKey:%s, Interval:%v}",
		c.Mode, c.Endpoint, c.RedactedAPIKey(), c.Interval)
}

// StoreConfig configures episode persistence.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `json:"driver" yaml:"driver"`
	Path   string `json:"path" yaml:"path"`
	// QueueSize bounds summaries waiting for the async recorder.
	QueueSize int `json:"queue_size" yaml:"queue_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	// Mode is the gin mode: "debug", "release" or "test".
	Mode string `json:"mode" yaml:"mode"`
}

// LoggingConfig configures operational and decision logging.
type LoggingConfig struct {
	// Level is "warn", "info", "debug" or "trace".
	// "debug" and below enable the advisory decision log.
	Level       string `json:"level" yaml:"level"`
	DecisionDir string `json:"decision_dir" yaml:"decision_dir"`
}

// AudioConfig configures the event sonification.
type AudioConfig struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Volume  float64 `json:"volume" yaml:"volume"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Seed:              1,
			Settings:          core.DefaultSettings(),
			AutoResetOnFault:  true,
			TickInterval:      parameter.TickInterval,
			TelemetryInterval: parameter.TelemetryInterval,
			HistoryCapacity:   parameter.HistoryCapacity,
			MaxCatchUpSteps:   8,
		},
		Advisor: AdvisorConfig{
			Mode:         AdvisorRule,
			Interval:     parameter.AdvisorInterval,
			Timeout:      parameter.AdvisorTimeout,
			Window:       parameter.AdvisorHistoryWindow,
			PastEpisodes: parameter.PastEpisodeLimit,
		},
		Store: StoreConfig{
			Driver:    StoreSQLite,
			Path:      "data/episodes.db",
			QueueSize: 64,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Logging: LoggingConfig{
			Level:       "info",
			DecisionDir: "data",
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  0.5,
		},
	}
}

// Load builds the configuration from path (optional), the .env file and the environment.
// An empty path skips the YAML stage. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Advisor.APIKey = expandEnvVars(config.Advisor.APIKey)
	return config, nil
}

// Validate rejects unknown enum strings and negative durations, then clamps
// out-of-range simulation values in place.
func (c *Config) Validate() error {
	s := &c.Simulation.Settings
	if _, err := core.ParseReactionMode(string(s.ReactionMode)); err != nil {
		return err
	}
	if _, err := core.ParsePhysicsMode(string(s.PhysicsMode)); err != nil {
		return err
	}

	validAdvisors := map[string]bool{AdvisorOff: true, AdvisorRule: true, AdvisorHTTP: true, AdvisorChain: true}
	if !validAdvisors[c.Advisor.Mode] {
		return fmt.Errorf("invalid advisor mode: %s (valid: off, rule, http, chain)", c.Advisor.Mode)
	}
	if (c.Advisor.Mode == AdvisorHTTP || c.Advisor.Mode == AdvisorChain) && c.Advisor.Endpoint == "" {
		return fmt.Errorf("advisor mode %s requires an endpoint", c.Advisor.Mode)
	}

	validDrivers := map[string]bool{StoreSQLite: true, StoreMemory: true}
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store driver: %s (valid: sqlite, memory)", c.Store.Driver)
	}
	if c.Store.Driver == StoreSQLite && c.Store.Path == "" {
		return errors.New("sqlite store requires a path")
	}

	validModes := map[string]bool{"": true, "debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return fmt.Errorf("invalid server mode: %s (valid: debug, release, test)", c.Server.Mode)
	}

	validLevels := map[string]bool{"": true, "warn": true, "info": true, "debug": true, "trace": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace)", c.Logging.Level)
	}

	for name, d := range map[string]time.Duration{
		"tick_interval":      c.Simulation.TickInterval,
		"telemetry_interval": c.Simulation.TelemetryInterval,
		"advisor.interval":   c.Advisor.Interval,
		"advisor.timeout":    c.Advisor.Timeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, d)
		}
	}

	// clamp stage
	*s = s.Clamp()
	if c.Simulation.TickInterval == 0 {
		c.Simulation.TickInterval = parameter.TickInterval
	}
	if c.Simulation.TelemetryInterval < c.Simulation.TickInterval {
		c.Simulation.TelemetryInterval = c.Simulation.TickInterval
	}
	if c.Simulation.HistoryCapacity < 1 {
		c.Simulation.HistoryCapacity = parameter.HistoryCapacity
	}
	if c.Simulation.MaxCatchUpSteps < 1 {
		c.Simulation.MaxCatchUpSteps = 1
	}
	if c.Advisor.Window < 1 {
		c.Advisor.Window = parameter.AdvisorHistoryWindow
	}
	if c.Advisor.PastEpisodes < 0 {
		c.Advisor.PastEpisodes = 0
	}
	if c.Store.QueueSize < 1 {
		c.Store.QueueSize = 1
	}
	c.Audio.Volume = min(max(c.Audio.Volume, 0), 1)
	return nil
}

// EngineConfig maps the simulation section onto the controller configuration.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Seed:              c.Simulation.Seed,
		Settings:          c.Simulation.Settings,
		AutoResetOnFault:  c.Simulation.AutoResetOnFault,
		TelemetryInterval: c.Simulation.TelemetryInterval,
		HistoryCapacity:   c.Simulation.HistoryCapacity,
		MaxCatchUpSteps:   c.Simulation.MaxCatchUpSteps,
	}
}

// SchedulerConfig maps cadences onto the real-time scheduler configuration.
// Periodic consults are disabled when the advisor is off.
func (c *Config) SchedulerConfig() engine.SchedulerConfig {
	interval := c.Advisor.Interval
	if c.Advisor.Mode == AdvisorOff {
		interval = 0
	}
	return engine.SchedulerConfig{
		TickInterval:      c.Simulation.TickInterval,
		TelemetryInterval: c.Simulation.TelemetryInterval,
		AdvisorInterval:   interval,
		AdvisorTimeout:    c.Advisor.Timeout,
		AdvisorWindow:     c.Advisor.Window,
		PastEpisodes:      c.Advisor.PastEpisodes,
	}
}

// applyEnvOverrides applies FUSION_* environment variable overrides to the config.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("FUSION_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FUSION_SEED: %w", err)
		}
		config.Simulation.Seed = n
	}
	if v := os.Getenv("FUSION_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Settings.Temperature = f
		}
	}
	if v := os.Getenv("FUSION_CONFINEMENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Settings.Confinement = f
		}
	}
	if v := os.Getenv("FUSION_PARTICLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Settings.ParticleCount = n
		}
	}
	if v := os.Getenv("FUSION_REACTION_MODE"); v != "" {
		config.Simulation.Settings.ReactionMode = core.ReactionMode(v)
	}
	if v := os.Getenv("FUSION_PHYSICS_MODE"); v != "" {
		config.Simulation.Settings.PhysicsMode = core.PhysicsMode(v)
	}

	if v := os.Getenv("FUSION_ADVISOR_MODE"); v != "" {
		config.Advisor.Mode = v
	}
	if v := os.Getenv("FUSION_ADVISOR_ENDPOINT"); v != "" {
		config.Advisor.Endpoint = v
	}
	if v := os.Getenv("FUSION_ADVISOR_API_KEY"); v != "" {
		config.Advisor.APIKey = v
	}

	if v := os.Getenv("FUSION_DB_PATH"); v != "" {
		config.Store.Path = v
	}
	if v := os.Getenv("FUSION_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("FUSION_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FUSION_AUDIO"); v != "" {
		config.Audio.Enabled = v == "true" || v == "1"
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
