package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/generic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)

	rates, err := cfg.Plans.Rates()
	require.NoError(t, err)
	assert.Equal(t, contract.DefaultRates(), rates)

	clock, err := cfg.ClockSource()
	require.NoError(t, err)
	assert.IsType(t, generic.SystemClock{}, clock)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
dataset:
  path: /tmp/data.json
log:
  level: debug
  format: json
plans:
  mtm:
    fee: "45.50"
  term:
    free_minutes: 0
  prepaid:
    top_up: "30"
clock:
  today: "2019-06-25"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset fields keep defaults")
	assert.Equal(t, "/tmp/data.json", cfg.Dataset.Path)

	rates, err := cfg.Plans.Rates()
	require.NoError(t, err)
	assert.True(t, rates.MonthToMonthFee.Equal(generic.MustParseAmount("45.50", generic.UnitDollars)))
	assert.True(t, rates.MonthToMonthPerMinute.Equal(contract.DefaultRates().MonthToMonthPerMinute))
	assert.Equal(t, 0, rates.TermFreeMinutes)
	assert.True(t, rates.PrepaidTopUp.Equal(generic.MustParseAmount("30", generic.UnitDollars)))

	clock, err := cfg.ClockSource()
	require.NoError(t, err)
	assert.Equal(t, "2019-06-25", clock.Today().String())

	log := cfg.Logger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [port"},
		{"bad port", "server:\n  port: 0\n"},
		{"bad amount", "plans:\n  term:\n    fee: twenty\n"},
		{"negative amount", "plans:\n  mtm:\n    per_minute: \"-0.05\"\n"},
		{"negative free minutes", "plans:\n  term:\n    free_minutes: -1\n"},
		{"bad clock", "clock:\n  today: 25/06/2019\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
