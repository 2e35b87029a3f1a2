// Package telemetry mirrors published Readings to an MQTT broker so the
// monitor can feed a wider station network. The mirror is optional and
// strictly best effort: the HTTP contract never depends on it.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"weatherstation/internal/reading"
)

type Config struct {
	Broker    string
	Port      int
	ClientID  string
	StationID string
}

// Message is the telemetry payload published per sample.
type Message struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Pressure    *float64  `json:"pressure_hpa,omitempty"`
}

type Publisher struct {
	client    mqtt.Client
	cfg       Config
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg Config) *Publisher {
	p := &Publisher{
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Callbacks keep internal state accurate
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		slog.Info("mqtt connected", "broker", cfg.Broker, "port", cfg.Port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		slog.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect establishes the broker connection. It waits for the initial
// connection and respects ctx and Disconnect().
func (p *Publisher) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	// Wait in a ctx/stop-aware loop.
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnectHandler sets connected=true.
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// Send publishes one Reading to the station's telemetry topic, QoS 1.
func (p *Publisher) Send(r reading.Reading) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	msg := newMessage(p.cfg.StationID, r, time.Now())
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	topic := fmt.Sprintf("stations/%s/telemetry", p.cfg.StationID)
	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish telemetry: %w", token.Error())
	}

	slog.Debug("published telemetry", "topic", topic, "station_id", p.cfg.StationID)
	return nil
}

// newMessage converts a Reading to the wire payload. Pressure is served
// in kPa on the status page but published in hPa, matching the station
// network's convention.
func newMessage(stationID string, r reading.Reading, ts time.Time) Message {
	temp := r.Temperature.Float64()
	hum := r.Humidity.Float64()
	press := r.Pressure.Float64() * 10
	return Message{
		StationID:   stationID,
		Timestamp:   ts,
		Temperature: &temp,
		Humidity:    &hum,
		Pressure:    &press,
	}
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (p *Publisher) Disconnect() {
	// Signal shutdown once (unblocks any Connect loops).
	p.stopOnce.Do(func() { close(p.stopCh) })

	// Disconnect without holding p.mu to avoid lock contention/deadlocks.
	if p.client != nil {
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	slog.Info("mqtt publisher disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
