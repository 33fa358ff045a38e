package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "-", cfg.RTL433Input)
	assert.Equal(t, 64, cfg.RTL433Buffer)
	assert.Empty(t, cfg.IncludeIDs)
	assert.Empty(t, cfg.ExcludeIDs)
	assert.False(t, cfg.FilterEnabled)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "weather-readings", cfg.KafkaTopic)
	assert.False(t, cfg.MQTTEnabled())
	assert.Equal(t, "weather-sensor-bridge", cfg.MQTTClientID)
	assert.Equal(t, "bresser", cfg.MQTTTopicPrefix)
	assert.Equal(t, AllFields, cfg.MQTTFields)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("RTL433_INPUT", "/var/log/rtl433.jsonl")
	t.Setenv("RTL433_BUFFER", "8")
	t.Setenv("SENSOR_IDS_INCLUDE", "0x83750871, 39")
	t.Setenv("SENSOR_IDS_EXCLUDE", "792882A2")
	t.Setenv("FILTER_SENSOR_ID", "0x83750871")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "garden-weather")
	t.Setenv("MQTT_BROKER", "tcp://mosquitto:1883")
	t.Setenv("MQTT_CLIENT_ID", "bridge-2")
	t.Setenv("MQTT_TOPIC_PREFIX", "home/garden/")
	t.Setenv("MQTT_FIELDS", "temperature, humidity,battery_low")
	t.Setenv("REDIS_ADDR", "valkey:6379")
	t.Setenv("REDIS_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/log/rtl433.jsonl", cfg.RTL433Input)
	assert.Equal(t, 8, cfg.RTL433Buffer)
	assert.Equal(t, []uint32{0x83750871, 0x39}, cfg.IncludeIDs)
	assert.Equal(t, []uint32{0x792882A2}, cfg.ExcludeIDs)
	assert.True(t, cfg.FilterEnabled)
	assert.Equal(t, uint32(0x83750871), cfg.FilterSensorID)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "garden-weather", cfg.KafkaTopic)
	assert.True(t, cfg.MQTTEnabled())
	assert.Equal(t, "bridge-2", cfg.MQTTClientID)
	assert.Equal(t, "home/garden", cfg.MQTTTopicPrefix)
	assert.Equal(t, []string{FieldTemperature, FieldHumidity, FieldBatteryLow}, cfg.MQTTFields)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, time.Hour, cfg.RedisTTL)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-5ms")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_ZeroPollIntervalAllowed(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.PollInterval)
}

func TestLoad_InvalidBuffer(t *testing.T) {
	for _, v := range []string{"0", "5000", "many"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RTL433_BUFFER", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "RTL433_BUFFER")
		})
	}
}

func TestLoad_InvalidFilterSensorID(t *testing.T) {
	t.Setenv("FILTER_SENSOR_ID", "not-hex")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FILTER_SENSOR_ID")
}

func TestLoad_FilterSensorIDZero(t *testing.T) {
	t.Setenv("FILTER_SENSOR_ID", "00000000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.FilterEnabled)
	assert.Zero(t, cfg.FilterSensorID)
}

func TestLoad_TooManyExcludedIDs(t *testing.T) {
	t.Setenv("SENSOR_IDS_EXCLUDE", "1,2,3,4,5,6,7,8,9,a,b,c,d")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENSOR_IDS_EXCLUDE")
}

func TestLoad_InvalidIncludedID(t *testing.T) {
	t.Setenv("SENSOR_IDS_INCLUDE", "0x1,xyz")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENSOR_IDS_INCLUDE")
}

func TestLoad_UnknownMQTTField(t *testing.T) {
	t.Setenv("MQTT_FIELDS", "temperature,pressure")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pressure")
}

func TestLoad_InvalidRedisTTL(t *testing.T) {
	t.Setenv("REDIS_TTL", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_TTL")
}
