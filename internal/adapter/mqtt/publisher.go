// Package mqtt publishes record fields as retained per-field state topics.
package mqtt

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-sensor-bridge/internal/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/sink"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 2 * time.Second
	disconnectMs   = 250
)

// publishClient is the subset of the paho client the publisher uses.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// Publisher owns one broker connection and hands out sinks bound to it.
type Publisher struct {
	client publishClient
	conn   pahomqtt.Client
	prefix string
	logger *slog.Logger
}

// Connect dials the configured broker. The client reconnects on its own after
// the first successful connection.
func Connect(cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		})

	c := pahomqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.MQTTBroker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.MQTTBroker, err)
	}
	logger.Info("connected to mqtt", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)

	p := newPublisher(c, cfg.MQTTTopicPrefix, logger)
	p.conn = c
	return p, nil
}

func newPublisher(c publishClient, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{client: c, prefix: prefix, logger: logger}
}

// Topic returns the state topic for field.
func (p *Publisher) Topic(field string) string {
	return p.prefix + "/" + field + "/state"
}

func (p *Publisher) NumberSink(field string) sink.Numeric {
	topic := p.Topic(field)
	return sink.NumericFunc(func(v float64) {
		p.publish(topic, FormatNumber(v))
	})
}

func (p *Publisher) BinarySink(field string) sink.Binary {
	topic := p.Topic(field)
	return sink.BinaryFunc(func(on bool) {
		p.publish(topic, FormatBinary(on))
	})
}

func (p *Publisher) TextSink(field string) sink.Text {
	topic := p.Topic(field)
	return sink.TextFunc(func(s string) {
		p.publish(topic, s)
	})
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Disconnect(disconnectMs)
	}
}

// publish waits at most publishTimeout. Failures are logged, never returned,
// since sinks have no error path.
func (p *Publisher) publish(topic, payload string) {
	tok := p.client.Publish(topic, 0, true, payload)
	if !tok.WaitTimeout(publishTimeout) {
		p.logger.Warn("mqtt publish timed out", "topic", topic)
		return
	}
	if err := tok.Error(); err != nil {
		p.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}

// FormatNumber renders v in the shortest form that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBinary renders on as ON or OFF.
func FormatBinary(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
