package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/telemetry"
)

func ptr[T any](v T) *T { return &v }

func sample(s core.Settings, q float64) core.TelemetrySnapshot {
	sf := telemetry.SafetyFactor(s.Temperature, s.Confinement)
	return core.TelemetrySnapshot{
		QFactor:      q,
		SafetyFactor: sf,
		Turbulence:   telemetry.Turbulence(sf),
		Temperature:  s.Temperature,
		Confinement:  s.Confinement,
	}
}

func TestAdviceValidate(t *testing.T) {
	tests := []struct {
		name    string
		advice  Advice
		wantErr bool
	}{
		{"no change", NoChange("ok"), false},
		{"restart", Advice{Action: ActionRestart}, false},
		{"adjust temperature", Advice{Action: ActionAdjust, Temperature: ptr(120.0)}, false},
		{"adjust reaction mode", Advice{Action: ActionAdjust, ReactionMode: ptr(core.ReactionModeDDDHe3)}, false},
		{"unknown action", Advice{Action: "explode"}, true},
		{"empty adjust", Advice{Action: ActionAdjust}, true},
		{"bad reaction mode", Advice{Action: ActionAdjust, ReactionMode: ptr(core.ReactionMode("pB11"))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.advice.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedAdvice)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReward(t *testing.T) {
	c := core.NewCounters()
	good := Reward(core.TelemetrySnapshot{QFactor: 2, FusionRate: 5}, c)
	bad := Reward(core.TelemetrySnapshot{QFactor: 0.5, FusionRate: 5, Turbulence: 0.4}, c)
	assert.Greater(t, good, bad)

	c.WallIntegrity = 50
	assert.Less(t, Reward(core.TelemetrySnapshot{QFactor: 2, FusionRate: 5}, c), good)
}

func TestRuleAdvisorRestartsFailingWall(t *testing.T) {
	c := core.NewCounters()
	c.WallIntegrity = 5
	adv, err := NewRuleAdvisor().Advise(context.Background(), Request{Counters: c, Settings: core.DefaultSettings()})
	require.NoError(t, err)
	assert.Equal(t, ActionRestart, adv.Action)
}

func TestRuleAdvisorNoTelemetry(t *testing.T) {
	adv, err := NewRuleAdvisor().Advise(context.Background(), Request{Counters: core.NewCounters(), Settings: core.DefaultSettings()})
	require.NoError(t, err)
	assert.Equal(t, ActionNoChange, adv.Action)
}

func TestRuleAdvisorSteersTowardGoldenRatio(t *testing.T) {
	s := core.DefaultSettings()
	s.Confinement = 1.2
	req := Request{
		Settings: s,
		Counters: core.NewCounters(),
		History:  []core.TelemetrySnapshot{sample(s, 3)},
	}

	adv, err := NewRuleAdvisor().Advise(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, ActionAdjust, adv.Action)
	require.NotNil(t, adv.Confinement)
	assert.Nil(t, adv.Temperature, "Q above breakeven should not heat")

	before := telemetry.Turbulence(telemetry.SafetyFactor(s.Temperature, s.Confinement))
	after := telemetry.Turbulence(telemetry.SafetyFactor(s.Temperature, *adv.Confinement))
	assert.Less(t, after, before)
	assert.NoError(t, adv.Validate())
}

func TestRuleAdvisorHeatsBelowBreakeven(t *testing.T) {
	s := core.DefaultSettings()
	s.Confinement = IdealConfinement(s.Temperature)
	req := Request{
		Settings: s,
		Counters: core.NewCounters(),
		History:  []core.TelemetrySnapshot{sample(s, 0.2), sample(s, 0.4)},
	}

	adv, err := NewRuleAdvisor().Advise(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, ActionAdjust, adv.Action)
	require.NotNil(t, adv.Temperature)
	assert.InDelta(t, s.Temperature*TemperatureBoost, *adv.Temperature, 1e-9)
	assert.Nil(t, adv.Confinement)
}

func TestRuleAdvisorWithinTolerance(t *testing.T) {
	s := core.DefaultSettings()
	s.Temperature = parameter.SafetyReferenceTemperature
	s.Confinement = 0.5
	req := Request{
		Settings: s,
		Counters: core.NewCounters(),
		History:  []core.TelemetrySnapshot{sample(s, 1.5)},
	}

	adv, err := NewRuleAdvisor().Advise(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ActionNoChange, adv.Action)
}

func TestIdealConfinementHitsGoldenRatio(t *testing.T) {
	for _, temp := range []float64{50, 100, 200} {
		c := IdealConfinement(temp)
		assert.InDelta(t, parameter.GoldenRatio, telemetry.SafetyFactor(temp, c), 1e-9)
	}
}

func TestHTTPAdvisor(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"action":"adjust_parameters","temperature":150,"rationale":"hotter"}`))
	}))
	defer srv.Close()

	h := NewHTTPAdvisor(HTTPConfig{Endpoint: srv.URL, APIKey: "secret"})
	req := Request{Settings: core.DefaultSettings(), Reward: 1.25}
	adv, err := h.Advise(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, ActionAdjust, adv.Action)
	require.NotNil(t, adv.Temperature)
	assert.Equal(t, 150.0, *adv.Temperature)
	assert.Equal(t, 1.25, got.Reward)
	assert.Equal(t, core.ReactionModeDT, got.Settings.ReactionMode)
}

func TestHTTPAdvisorMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"unknown action", `{"action":"launch"}`},
		{"empty adjust", `{"action":"adjust_parameters"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPAdvisor(HTTPConfig{Endpoint: srv.URL}).Advise(context.Background(), Request{})
			assert.ErrorIs(t, err, ErrMalformedAdvice)
		})
	}
}

func TestHTTPAdvisorStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPAdvisor(HTTPConfig{Endpoint: srv.URL}).Advise(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPAdvisorTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPAdvisor(HTTPConfig{Endpoint: srv.URL}).Advise(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPAdvisorUnconfigured(t *testing.T) {
	h := NewHTTPAdvisor(HTTPConfig{})
	assert.False(t, h.Available())
	_, err := h.Advise(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoAdvisor)
}

func TestFallbackChain(t *testing.T) {
	failing := Func(func(context.Context, Request) (Advice, error) {
		return Advice{}, errors.New("down")
	})
	malformed := Func(func(context.Context, Request) (Advice, error) {
		return Advice{Action: "bogus"}, nil
	})
	good := Func(func(context.Context, Request) (Advice, error) {
		return NoChange("fine"), nil
	})

	adv, err := Fallback(failing, nil, malformed, good).Advise(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fine", adv.Rationale)

	_, err = Fallback(failing, malformed).Advise(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedAdvice)

	_, err = Fallback().Advise(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoAdvisor)
}
