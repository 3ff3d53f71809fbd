package types

// Application configuration, loaded from an embedded board document
// and optionally overlaid by a YAML file.

type AppConfig struct {
	Board     string          `json:"board" yaml:"board"`
	Display   DisplayConfig   `json:"display" yaml:"display"`
	Buttons   ButtonConfig    `json:"buttons" yaml:"buttons"`
	Stopwatch StopwatchConfig `json:"stopwatch" yaml:"stopwatch"`
	RTC       RTCConfig       `json:"rtc" yaml:"rtc"`
}

// DisplayConfig wires a 4-digit, 7-segment multiplexed display.
// Segment order: top, middle, bottom, upper-left, upper-right, lower-left, lower-right.
type DisplayConfig struct {
	Segments         []int `json:"segments" yaml:"segments"` // 7 pins
	Point            int   `json:"point" yaml:"point"`
	Digits           []int `json:"digits" yaml:"digits"` // 4 pins, left to right
	DwellUs          int   `json:"dwell_us" yaml:"dwell_us"`
	SegmentActiveLow bool  `json:"segment_active_low" yaml:"segment_active_low"`
	DigitActiveHigh  bool  `json:"digit_active_high" yaml:"digit_active_high"`
}

type ButtonConfig struct {
	Mode       int    `json:"mode" yaml:"mode"`     // advances the active app's status
	Switch     int    `json:"switch" yaml:"switch"` // switches between apps
	Pull       string `json:"pull" yaml:"pull"`     // "none","up","down"
	DebounceMs int    `json:"debounce_ms" yaml:"debounce_ms"`
}

// Stopwatch text formats below 100 s.
const (
	FormatFixed  = "fixed"  // SS.CC up to 99.99
	FormatLegacy = "legacy" // SS.CC below 10, truncated decimal text below 100
)

type StopwatchConfig struct {
	Format    string `json:"format" yaml:"format"`
	BackoffMs int    `json:"backoff_ms" yaml:"backoff_ms"`
}

// RTCConfig selects a PCF8523 on I2C0 as the wall-clock source (MCU builds only).
type RTCConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	SDA     int  `json:"sda" yaml:"sda"`
	SCL     int  `json:"scl" yaml:"scl"`
}
