package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"segclock/bus"
	"segclock/errcode"
	"segclock/services/hal"
	"segclock/types"
	"segclock/x/mathx"
)

const configPrefix = "config"

// EmbeddedConfigLookup allows overriding how board configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Boards lists the embedded board names, sorted.
func Boards() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load decodes the embedded document for board. The result is not validated.
func Load(board string) (types.AppConfig, error) {
	var cfg types.AppConfig
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return cfg, &errcode.E{C: errcode.InvalidConfig, Op: "config.load", Msg: "no embedded config for board " + strconv.Quote(board)}
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	if cfg.Board == "" {
		cfg.Board = board
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto base. Keys absent from the
// file keep base's values. A missing file returns base unchanged.
func LoadFile(path string, base types.AppConfig) (types.AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return base, fmt.Errorf("read config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

// Default timings, applied when a field is zero and used to clamp the rest.
const (
	DefaultDwellUs    = 1000
	MinDwellUs        = 50
	MaxDwellUs        = 1000
	DefaultDebounceMs = 200
	MinDebounceMs     = 50
	MaxDebounceMs     = 1000
	DefaultBackoffMs  = 100
	MinBackoffMs      = 10
	MaxBackoffMs      = 500
)

// Validate checks the pin map and names and returns cfg with timings
// defaulted and clamped.
func Validate(cfg types.AppConfig) (types.AppConfig, error) {
	d := cfg.Display
	if len(d.Segments) != 7 {
		return cfg, invalid("display.segments: want 7 pins, got " + strconv.Itoa(len(d.Segments)))
	}
	if len(d.Digits) != 4 {
		return cfg, invalid("display.digits: want 4 pins, got " + strconv.Itoa(len(d.Digits)))
	}

	pins := make([]int, 0, 16)
	pins = append(pins, d.Segments...)
	pins = append(pins, d.Point)
	pins = append(pins, d.Digits...)
	pins = append(pins, cfg.Buttons.Mode, cfg.Buttons.Switch)
	if cfg.RTC.Enabled {
		pins = append(pins, cfg.RTC.SDA, cfg.RTC.SCL)
	}
	seen := make(map[int]bool, len(pins))
	for _, p := range pins {
		if p < 0 {
			return cfg, invalid("negative pin " + strconv.Itoa(p))
		}
		if seen[p] {
			return cfg, invalid("pin " + strconv.Itoa(p) + " assigned twice")
		}
		seen[p] = true
	}

	if _, ok := hal.ParsePull(cfg.Buttons.Pull); !ok {
		return cfg, invalid("buttons.pull: unknown " + strconv.Quote(cfg.Buttons.Pull))
	}
	switch cfg.Stopwatch.Format {
	case "":
		cfg.Stopwatch.Format = types.FormatFixed
	case types.FormatFixed, types.FormatLegacy:
	default:
		return cfg, invalid("stopwatch.format: unknown " + strconv.Quote(cfg.Stopwatch.Format))
	}

	cfg.Display.DwellUs = mathx.ClampDefault(d.DwellUs, DefaultDwellUs, MinDwellUs, MaxDwellUs)
	cfg.Buttons.DebounceMs = mathx.ClampDefault(cfg.Buttons.DebounceMs, DefaultDebounceMs, MinDebounceMs, MaxDebounceMs)
	cfg.Stopwatch.BackoffMs = mathx.ClampDefault(cfg.Stopwatch.BackoffMs, DefaultBackoffMs, MinBackoffMs, MaxBackoffMs)
	return cfg, nil
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "config.validate", Msg: msg}
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: configPrefix}
}

// Publish puts each section of cfg on config/<section> as a retained message.
func (s *ConfigService) Publish(conn *bus.Connection, cfg types.AppConfig) {
	conn.PublishRetained(bus.T(configPrefix, "board"), cfg.Board)
	conn.PublishRetained(bus.T(configPrefix, "display"), cfg.Display)
	conn.PublishRetained(bus.T(configPrefix, "buttons"), cfg.Buttons)
	conn.PublishRetained(bus.T(configPrefix, "stopwatch"), cfg.Stopwatch)
	conn.PublishRetained(bus.T(configPrefix, "rtc"), cfg.RTC)
}
