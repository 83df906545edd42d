/*
Package config loads the server's YAML configuration.

FILE LAYOUT:

	server:
	  port: 8080
	  read_timeout: 15s
	  write_timeout: 15s
	  allowed_origins: ["http://localhost:3000"]
	dataset:
	  path: data/dataset.json
	log:
	  level: info      # logrus level name
	  format: text     # text | json
	plans:
	  mtm:
	    fee: "50.00"
	    per_minute: "0.05"
	  term:
	    fee: "20.00"
	    per_minute: "0.1"
	    deposit: "300.00"
	    free_minutes: 100
	  prepaid:
	    per_minute: "0.025"
	    top_up: "25.00"
	    top_up_threshold: "10.00"
	clock:
	  today: "2019-06-25"   # optional; pins the date Term settlements use

Any field left out keeps its default. Money is written as decimal strings so
rates are never rounded through float64.
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/generic"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Dataset DatasetConfig `yaml:"dataset"`
	Log     LogConfig     `yaml:"log"`
	Plans   Plans         `yaml:"plans"`
	Clock   ClockConfig   `yaml:"clock"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type DatasetConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Plans overrides the price list. Empty strings keep the default.
type Plans struct {
	MonthToMonth MonthToMonthPlan `yaml:"mtm"`
	Term         TermPlan         `yaml:"term"`
	Prepaid      PrepaidPlan      `yaml:"prepaid"`
}

type MonthToMonthPlan struct {
	Fee       string `yaml:"fee"`
	PerMinute string `yaml:"per_minute"`
}

type TermPlan struct {
	Fee         string `yaml:"fee"`
	PerMinute   string `yaml:"per_minute"`
	Deposit     string `yaml:"deposit"`
	FreeMinutes *int   `yaml:"free_minutes"`
}

type PrepaidPlan struct {
	PerMinute      string `yaml:"per_minute"`
	TopUp          string `yaml:"top_up"`
	TopUpThreshold string `yaml:"top_up_threshold"`
}

type ClockConfig struct {
	Today string `yaml:"today"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Dataset: DatasetConfig{Path: "data/dataset.json"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that is parsed lazily.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := c.Plans.Rates(); err != nil {
		return err
	}
	if _, err := c.ClockSource(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	return nil
}

// Rates applies the overrides to contract.DefaultRates.
func (p Plans) Rates() (contract.Rates, error) {
	r := contract.DefaultRates()
	fields := []struct {
		name  string
		value string
		dst   *generic.Amount
	}{
		{"plans.mtm.fee", p.MonthToMonth.Fee, &r.MonthToMonthFee},
		{"plans.mtm.per_minute", p.MonthToMonth.PerMinute, &r.MonthToMonthPerMinute},
		{"plans.term.fee", p.Term.Fee, &r.TermFee},
		{"plans.term.per_minute", p.Term.PerMinute, &r.TermPerMinute},
		{"plans.term.deposit", p.Term.Deposit, &r.TermDeposit},
		{"plans.prepaid.per_minute", p.Prepaid.PerMinute, &r.PrepaidPerMinute},
		{"plans.prepaid.top_up", p.Prepaid.TopUp, &r.PrepaidTopUp},
		{"plans.prepaid.top_up_threshold", p.Prepaid.TopUpThreshold, &r.PrepaidTopUpThreshold},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		a, err := generic.ParseAmount(f.value, generic.UnitDollars)
		if err != nil {
			return contract.Rates{}, fmt.Errorf("%s: %w", f.name, err)
		}
		if a.IsNegative() {
			return contract.Rates{}, fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = a
	}
	if p.Term.FreeMinutes != nil {
		if *p.Term.FreeMinutes < 0 {
			return contract.Rates{}, fmt.Errorf("plans.term.free_minutes must not be negative")
		}
		r.TermFreeMinutes = *p.Term.FreeMinutes
	}
	return r, nil
}

// ClockSource returns a FixedClock when clock.today is set, otherwise the
// system clock.
func (c *Config) ClockSource() (generic.Clock, error) {
	if c.Clock.Today == "" {
		return generic.SystemClock{}, nil
	}
	today, err := generic.ParseDate(c.Clock.Today)
	if err != nil {
		return nil, fmt.Errorf("clock.today: %w", err)
	}
	return generic.FixedClock{Date: today}, nil
}

// Logger builds the process logger from the log section.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(level)
	}
	if strings.EqualFold(c.Log.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
