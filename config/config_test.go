package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, uint64(1), c.Simulation.Seed)
	assert.Equal(t, core.DefaultSettings(), c.Simulation.Settings)
	assert.True(t, c.Simulation.AutoResetOnFault)
	assert.Equal(t, parameter.TickInterval, c.Simulation.TickInterval)
	assert.Equal(t, AdvisorRule, c.Advisor.Mode)
	assert.Equal(t, StoreSQLite, c.Store.Driver)
	assert.Equal(t, "info", c.Logging.Level)
	assert.False(t, c.Audio.Enabled)
	assert.NoError(t, c.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  seed: 99
  settings:
    temperature: 250
    confinement: 0.9
    reaction_mode: DD_DHe3
    physics_mode: orbital
    particle_count: 120
  telemetry_interval: 500ms
advisor:
  mode: http
  endpoint: http://localhost:9000/advise
  timeout: 2s
store:
  driver: memory
`)

	c, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(99), c.Simulation.Seed)
	assert.Equal(t, 250.0, c.Simulation.Settings.Temperature)
	assert.Equal(t, core.ReactionModeDDDHe3, c.Simulation.Settings.ReactionMode)
	assert.Equal(t, core.PhysicsOrbital, c.Simulation.Settings.PhysicsMode)
	assert.Equal(t, 120, c.Simulation.Settings.ParticleCount)
	assert.Equal(t, 500*time.Millisecond, c.Simulation.TelemetryInterval)
	assert.Equal(t, AdvisorHTTP, c.Advisor.Mode)
	assert.Equal(t, 2*time.Second, c.Advisor.Timeout)
	assert.Equal(t, StoreMemory, c.Store.Driver)

	// unset keys keep their defaults
	assert.Equal(t, parameter.DefaultEnergyThreshold, c.Simulation.Settings.EnergyThreshold)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.NoError(t, c.Validate())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := writeConfig(t, "simulation: [unclosed")
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileExpandsAPIKey(t *testing.T) {
	t.Setenv("TEST_ADVISOR_KEY", "secret-value-123456")
	path := writeConfig(t, `
advisor:
  api_key: ${TEST_ADVISOR_KEY}
`)
	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-value-123456", c.Advisor.APIKey)
	assert.NotContains(t, c.Advisor.String(), "secret-value-123456")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FUSION_SEED", "7")
	t.Setenv("FUSION_TEMPERATURE", "400")
	t.Setenv("FUSION_REACTION_MODE", "DD_DHe3")
	t.Setenv("FUSION_ADVISOR_MODE", "off")
	t.Setenv("FUSION_DB_PATH", "/tmp/other.db")
	t.Setenv("FUSION_LOG_LEVEL", "debug")
	t.Setenv("FUSION_AUDIO", "1")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint64(7), c.Simulation.Seed)
	assert.Equal(t, 400.0, c.Simulation.Settings.Temperature)
	assert.Equal(t, core.ReactionModeDDDHe3, c.Simulation.Settings.ReactionMode)
	assert.Equal(t, AdvisorOff, c.Advisor.Mode)
	assert.Equal(t, "/tmp/other.db", c.Store.Path)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Audio.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("FUSION_ADDR", ":9999")
	path := writeConfig(t, `
server:
  addr: ":7000"
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.Server.Addr)
}

func TestLoadRejectsBadSeed(t *testing.T) {
	t.Setenv("FUSION_SEED", "not-a-number")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateClampsSimulation(t *testing.T) {
	c := Default()
	c.Simulation.Settings.Temperature = 5000
	c.Simulation.Settings.Confinement = -1
	c.Simulation.Settings.ParticleCount = 1
	c.Simulation.TelemetryInterval = time.Millisecond
	c.Simulation.HistoryCapacity = 0
	c.Audio.Volume = 3

	require.NoError(t, c.Validate())

	assert.Equal(t, parameter.TemperatureMax, c.Simulation.Settings.Temperature)
	assert.Equal(t, parameter.ConfinementMin, c.Simulation.Settings.Confinement)
	assert.Equal(t, int(parameter.ParticleCountMin), c.Simulation.Settings.ParticleCount)
	assert.Equal(t, c.Simulation.TickInterval, c.Simulation.TelemetryInterval)
	assert.Equal(t, parameter.HistoryCapacity, c.Simulation.HistoryCapacity)
	assert.Equal(t, 1.0, c.Audio.Volume)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown reaction mode", func(c *Config) { c.Simulation.Settings.ReactionMode = "pB11" }},
		{"unknown physics mode", func(c *Config) { c.Simulation.Settings.PhysicsMode = "stellarator" }},
		{"unknown advisor mode", func(c *Config) { c.Advisor.Mode = "oracle" }},
		{"http advisor without endpoint", func(c *Config) { c.Advisor.Mode = AdvisorHTTP }},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }},
		{"unknown server mode", func(c *Config) { c.Server.Mode = "verbose" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"negative timeout", func(c *Config) { c.Advisor.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestReactionModeErrorIsSentinel(t *testing.T) {
	c := Default()
	c.Simulation.Settings.ReactionMode = "pB11"
	assert.ErrorIs(t, c.Validate(), core.ErrUnknownMode)
}

func TestSchedulerConfigDisablesConsultsWhenOff(t *testing.T) {
	c := Default()
	c.Advisor.Mode = AdvisorOff
	assert.Zero(t, c.SchedulerConfig().AdvisorInterval)

	c.Advisor.Mode = AdvisorRule
	assert.Equal(t, parameter.AdvisorInterval, c.SchedulerConfig().AdvisorInterval)
}

func TestEngineConfigMapping(t *testing.T) {
	c := Default()
	c.Simulation.Seed = 31
	ec := c.EngineConfig()
	assert.Equal(t, uint64(31), ec.Seed)
	assert.Equal(t, c.Simulation.Settings, ec.Settings)
	assert.Equal(t, c.Simulation.MaxCatchUpSteps, ec.MaxCatchUpSteps)
}

func TestRedactedAPIKey(t *testing.T) {
	assert.Equal(t, "", AdvisorConfig{}.RedactedAPIKey())
	assert.Equal(t, "(set)", AdvisorConfig{APIKey: "short"}.RedactedAPIKey())
	assert.Equal(t, "sk-a...wxyz", AdvisorConfig{APIKey: "sk-abcdefghijklmnopqrstuvwxyz"}.RedactedAPIKey())
}
