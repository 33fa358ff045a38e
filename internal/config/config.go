package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/decoder"
)

// Field names accepted by MQTT_FIELDS. They double as topic segments.
const (
	FieldSensorID      = "sensor_id"
	FieldRSSI          = "rssi"
	FieldBatteryLow    = "battery_low"
	FieldTemperature   = "temperature"
	FieldHumidity      = "humidity"
	FieldWindGust      = "wind_gust"
	FieldWindSpeed     = "wind_speed"
	FieldWindDirection = "wind_direction"
	FieldRain          = "rain"
	FieldUV            = "uv"
	FieldLight         = "light"
)

// AllFields lists every per-field sink in publication order.
var AllFields = []string{
	FieldSensorID, FieldRSSI, FieldBatteryLow,
	FieldTemperature, FieldHumidity,
	FieldWindGust, FieldWindSpeed, FieldWindDirection,
	FieldRain, FieldUV, FieldLight,
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	RTL433Input  string
	RTL433Buffer int
	IncludeIDs   []uint32
	ExcludeIDs   []uint32

	// Runtime identity filter; FilterEnabled is false when FILTER_SENSOR_ID is unset.
	FilterSensorID uint32
	FilterEnabled  bool

	PollInterval    time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	MQTTFields      []string

	RedisAddr string
	RedisTTL  time.Duration
}

// KafkaEnabled reports whether the Kafka event trigger is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// MQTTEnabled reports whether per-field MQTT sinks are configured.
func (c *Config) MQTTEnabled() bool { return c.MQTTBroker != "" }

// RedisEnabled reports whether the snapshot store is configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", "100ms")
	if err != nil {
		return nil, err
	}
	redisTTL, err := parseDuration("REDIS_TTL", "24h")
	if err != nil {
		return nil, err
	}
	if redisTTL <= 0 {
		return nil, errors.New("invalid REDIS_TTL")
	}

	buffer, err := strconv.Atoi(sharedcfg.EnvOrDefault("RTL433_BUFFER", "64"))
	if err != nil || buffer < 1 || buffer > 4096 {
		return nil, errors.New("invalid RTL433_BUFFER: must be 1-4096")
	}

	include, err := parseIDList("SENSOR_IDS_INCLUDE")
	if err != nil {
		return nil, err
	}
	exclude, err := parseIDList("SENSOR_IDS_EXCLUDE")
	if err != nil {
		return nil, err
	}

	fields, err := parseFields(sharedcfg.EnvOrDefault("MQTT_FIELDS", strings.Join(AllFields, ",")))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RTL433Input:  sharedcfg.EnvOrDefault("RTL433_INPUT", "-"),
		RTL433Buffer: buffer,
		IncludeIDs:   include,
		ExcludeIDs:   exclude,

		PollInterval:    pollInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaTopic: sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-readings"),

		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "weather-sensor-bridge"),
		MQTTTopicPrefix: strings.TrimSuffix(sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "bresser"), "/"),
		MQTTFields:      fields,

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisTTL:  redisTTL,
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(v)
	}

	if v := os.Getenv("FILTER_SENSOR_ID"); v != "" {
		id, err := decoder.ParseSensorID(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FILTER_SENSOR_ID: %w", err)
		}
		cfg.FilterSensorID = id
		cfg.FilterEnabled = true
	}

	if cfg.RTL433Input == "" {
		return nil, errors.New("RTL433_INPUT is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MQTTEnabled() && cfg.MQTTTopicPrefix == "" {
		return nil, errors.New("MQTT_TOPIC_PREFIX is required when MQTT_BROKER is set")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIDList(key string) ([]uint32, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	if len(parts) > decoder.MaxSensorIDs {
		return nil, fmt.Errorf("%s: at most %d sensor IDs", key, decoder.MaxSensorIDs)
	}
	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		id, err := decoder.ParseSensorID(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseFields(v string) ([]string, error) {
	var fields []string
	for _, f := range strings.Split(v, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !isKnownField(f) {
			return nil, fmt.Errorf("invalid MQTT_FIELDS: unknown field %q", f)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func isKnownField(f string) bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}
