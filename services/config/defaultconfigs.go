package config

// -----------------------------------------------------------------------------
// Embedded board configuration
//
// Key: board name (the -board flag)
// Val: YAML document decoded into types.AppConfig
// -----------------------------------------------------------------------------

// Raspberry Pi, BCM numbering. Common-anode display: segments sink current,
// digit lines source it.
const cfgRPi = `
board: rpi
display:
  segments: [5, 6, 13, 19, 26, 16, 12]
  point: 20
  digits: [18, 27, 22, 23]
  dwell_us: 1000
  segment_active_low: true
  digit_active_high: true
buttons:
  mode: 25
  switch: 24
  pull: down
  debounce_ms: 200
stopwatch:
  format: fixed
  backoff_ms: 100
rtc:
  enabled: false
`

// Pico / Pico 2, GPn numbering. PCF8523 on I2C0 keeps time across power loss.
const cfgPico = `
board: pico
display:
  segments: [6, 7, 8, 9, 10, 11, 12]
  point: 13
  digits: [16, 17, 18, 19]
  dwell_us: 1000
  segment_active_low: true
  digit_active_high: true
buttons:
  mode: 20
  switch: 21
  pull: down
  debounce_ms: 200
stopwatch:
  format: fixed
  backoff_ms: 100
rtc:
  enabled: true
  sda: 4
  scl: 5
`

// In-memory pins, same map as rpi.
const cfgSim = `
board: sim
display:
  segments: [5, 6, 13, 19, 26, 16, 12]
  point: 20
  digits: [18, 27, 22, 23]
  dwell_us: 1000
  segment_active_low: true
  digit_active_high: true
buttons:
  mode: 25
  switch: 24
  pull: none
  debounce_ms: 200
stopwatch:
  format: fixed
  backoff_ms: 100
`

var embeddedConfigs = map[string][]byte{
	"rpi":  []byte(cfgRPi),
	"pico": []byte(cfgPico),
	"sim":  []byte(cfgSim),
}
