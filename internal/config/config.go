// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Sensor sources.
const (
	SourceIIO     = "iio"
	SourceMPU9250 = "mpu9250"
	SourceMock    = "mock"
)

// Config holds all application configuration values. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	// Rotation
	Display             string
	Sleep               time.Duration
	Threshold           float32
	NormalizationFactor float32
	Keyboard            bool
	OneShot             bool
	Touchscreens        []string // accepted for compatibility; not used yet

	// Sensors
	SensorSource      string
	SensorPattern     string
	MPU9250SPIDevice  string
	MPU9250CSPin      string
	MPU9250AccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g

	// MQTT (publishing is disabled when MQTTBroker is empty)
	MQTTBroker   string
	MQTTClientID string
	TopicState   string

	// Web Server
	WebServerPort int
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Display:             "eDP-1",
		Sleep:               1000 * time.Millisecond,
		Threshold:           0.2,
		NormalizationFactor: 1_000_000.0,

		SensorSource:      SourceIIO,
		SensorPattern:     "/sys/bus/iio/devices/iio:device*/in_accel_*_raw",
		MPU9250SPIDevice:  "/dev/spidev0.0",
		MPU9250CSPin:      "8",
		MPU9250AccelRange: 0,

		MQTTClientID: "autorotate",
		TopicState:   "autorotate/state",

		WebServerPort: 8080,
	}
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file at path on top of Default. Files
// ending in .toml are decoded as TOML; anything else uses KEY=VALUE lines.
func Load(path string) (*Config, error) {
	cfg := Default()
	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = cfg.loadTOML(path)
	} else {
		err = cfg.loadKeyValue(path)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadKeyValue(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.SetValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// tomlFile mirrors the KEY=VALUE keys in lower case.
type tomlFile struct {
	Display             string   `toml:"display"`
	SleepMS             int64    `toml:"sleep_ms"`
	Threshold           float64  `toml:"threshold"`
	NormalizationFactor float64  `toml:"normalization_factor"`
	Keyboard            bool     `toml:"keyboard"`
	OneShot             bool     `toml:"oneshot"`
	Touchscreens        []string `toml:"touchscreens"`

	SensorSource      string `toml:"sensor_source"`
	SensorPattern     string `toml:"sensor_pattern"`
	MPU9250SPIDevice  string `toml:"mpu9250_spi_device"`
	MPU9250CSPin      string `toml:"mpu9250_cs_pin"`
	MPU9250AccelRange int    `toml:"mpu9250_accel_range"`

	MQTTBroker   string `toml:"mqtt_broker"`
	MQTTClientID string `toml:"mqtt_client_id"`
	TopicState   string `toml:"topic_state"`

	WebServerPort int `toml:"web_server_port"`
}

func (c *Config) loadTOML(path string) error {
	var raw tomlFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key: %q", undecoded[0].String())
	}

	if meta.IsDefined("display") {
		c.Display = strings.TrimSpace(raw.Display)
	}
	if meta.IsDefined("sleep_ms") {
		c.Sleep = time.Duration(raw.SleepMS) * time.Millisecond
	}
	if meta.IsDefined("threshold") {
		c.Threshold = float32(raw.Threshold)
	}
	if meta.IsDefined("normalization_factor") {
		c.NormalizationFactor = float32(raw.NormalizationFactor)
	}
	if meta.IsDefined("keyboard") {
		c.Keyboard = raw.Keyboard
	}
	if meta.IsDefined("oneshot") {
		c.OneShot = raw.OneShot
	}
	if meta.IsDefined("touchscreens") {
		c.Touchscreens = normalizeList(raw.Touchscreens)
	}
	if meta.IsDefined("sensor_source") {
		c.SensorSource = strings.ToLower(strings.TrimSpace(raw.SensorSource))
	}
	if meta.IsDefined("sensor_pattern") {
		c.SensorPattern = strings.TrimSpace(raw.SensorPattern)
	}
	if meta.IsDefined("mpu9250_spi_device") {
		c.MPU9250SPIDevice = strings.TrimSpace(raw.MPU9250SPIDevice)
	}
	if meta.IsDefined("mpu9250_cs_pin") {
		c.MPU9250CSPin = strings.TrimSpace(raw.MPU9250CSPin)
	}
	if meta.IsDefined("mpu9250_accel_range") {
		if raw.MPU9250AccelRange < 0 || raw.MPU9250AccelRange > 3 {
			return fmt.Errorf("mpu9250_accel_range must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", raw.MPU9250AccelRange)
		}
		c.MPU9250AccelRange = byte(raw.MPU9250AccelRange)
	}
	if meta.IsDefined("mqtt_broker") {
		c.MQTTBroker = strings.TrimSpace(raw.MQTTBroker)
	}
	if meta.IsDefined("mqtt_client_id") {
		c.MQTTClientID = strings.TrimSpace(raw.MQTTClientID)
	}
	if meta.IsDefined("topic_state") {
		c.TopicState = strings.TrimSpace(raw.TopicState)
	}
	if meta.IsDefined("web_server_port") {
		c.WebServerPort = raw.WebServerPort
	}
	return nil
}

// SetValue sets a config value from its KEY=VALUE representation.
func (c *Config) SetValue(key, value string) error {
	switch key {
	// Rotation
	case "DISPLAY":
		c.Display = value
	case "SLEEP_MS":
		ms, err := strconv.ParseUint(value, 10, 63)
		if err != nil {
			return fmt.Errorf("invalid SLEEP_MS %q: %w", value, err)
		}
		c.Sleep = time.Duration(ms) * time.Millisecond
	case "THRESHOLD":
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("invalid THRESHOLD %q: %w", value, err)
		}
		c.Threshold = float32(v)
	case "NORMALIZATION_FACTOR":
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("invalid NORMALIZATION_FACTOR %q: %w", value, err)
		}
		c.NormalizationFactor = float32(v)
	case "KEYBOARD":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid KEYBOARD %q: %w", value, err)
		}
		c.Keyboard = v
	case "ONESHOT":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ONESHOT %q: %w", value, err)
		}
		c.OneShot = v
	case "TOUCHSCREENS":
		c.Touchscreens = normalizeList(strings.Split(value, ","))

	// Sensors
	case "SENSOR_SOURCE":
		c.SensorSource = strings.ToLower(value)
	case "SENSOR_PATTERN":
		c.SensorPattern = value
	case "MPU9250_SPI_DEVICE":
		c.MPU9250SPIDevice = value
	case "MPU9250_CS_PIN":
		c.MPU9250CSPin = value
	case "MPU9250_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MPU9250_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("MPU9250_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.MPU9250AccelRange = byte(rangeVal)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_STATE":
		c.TopicState = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Display) == "" {
		return fmt.Errorf("DISPLAY is required")
	}
	if c.Sleep < 0 {
		return fmt.Errorf("SLEEP_MS must not be negative, got %v", c.Sleep)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("THRESHOLD must not be negative, got %v", c.Threshold)
	}
	if c.NormalizationFactor == 0 {
		return fmt.Errorf("NORMALIZATION_FACTOR must not be zero")
	}
	switch c.SensorSource {
	case SourceIIO:
		if c.SensorPattern == "" {
			return fmt.Errorf("SENSOR_PATTERN is required for the %s source", SourceIIO)
		}
	case SourceMPU9250:
		if c.MPU9250SPIDevice == "" || c.MPU9250CSPin == "" {
			return fmt.Errorf("MPU9250_SPI_DEVICE and MPU9250_CS_PIN are required for the %s source", SourceMPU9250)
		}
	case SourceMock:
	default:
		return fmt.Errorf("unknown SENSOR_SOURCE %q (want %s, %s or %s)", c.SensorSource, SourceIIO, SourceMPU9250, SourceMock)
	}
	if c.MQTTBroker != "" && c.TopicState == "" {
		return fmt.Errorf("TOPIC_STATE is required when MQTT_BROKER is set")
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT out of range: %d", c.WebServerPort)
	}
	return nil
}

func normalizeList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// InitGlobal loads the configuration from path once; later calls return
// the first result's error and do not reload.
func InitGlobal(path string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if path == "" {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(path)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
