package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
	"github.com/LukaChassaing/meteo-dashboard/internal/observability"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Ingest outcomes recorded per message.
const (
	OutcomeStored  = "stored"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// ReadingHandler stores or otherwise consumes one validated reading.
type ReadingHandler func(ctx context.Context, reading types.Reading) error

// ReadingSubscriber is what feature modules need to attach their handler.
type ReadingSubscriber interface {
	SetReadingHandler(handler ReadingHandler)
}

type Subscriber struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	mu        sync.RWMutex
	connected bool
	handler   ReadingHandler

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSubscriber(cfg config.Config, logger *slog.Logger, metrics *observability.Metrics) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Subscriber{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		stopCh:  make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Clean sessions lose subscriptions on reconnect, so subscribe from the
	// connect handler rather than once after Connect.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		go func() {
			if err := s.subscribe(c); err != nil {
				logger.Error("mqtt subscribe failed", "topic", cfg.MQTTTopic, "error", err)
			}
		}()
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// SetReadingHandler must be called before Connect so no message is missed.
func (s *Subscriber) SetReadingHandler(handler ReadingHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Connect establishes the broker connection, waiting until it succeeds,
// ctx is done or the subscriber is stopped.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	topic := s.cfg.MQTTTopic
	const qos = byte(1)

	token := c.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	reading, err := decodeReading(topic, payload)
	if err != nil {
		s.logger.Warn("failed to parse measurement message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		s.metrics.IngestOutcome(OutcomeInvalid)
		return
	}

	if err := reading.Validate(); err != nil {
		s.logger.Warn("invalid measurement message",
			"topic", topic,
			"location", reading.Location,
			"error", err,
		)
		s.metrics.IngestOutcome(OutcomeInvalid)
		return
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := handler(ctx, reading); err != nil {
		s.logger.Error("reading handler failed",
			"topic", topic,
			"location", reading.Location,
			"error", err,
		)
		s.metrics.IngestOutcome(OutcomeFailed)
		return
	}
	s.metrics.IngestOutcome(OutcomeStored)
	s.logger.Debug("stored measurement",
		"location", reading.Location,
		"timestamp", reading.Timestamp,
	)
}

// decodeReading parses a Reading payload. A payload without a location
// takes it from the topic segment after the first level, so sensors can
// publish {"temperature":..,"humidity":..,"timestamp":..} to
// meteo/<location>/measurements.
func decodeReading(topic string, payload []byte) (types.Reading, error) {
	var r types.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return types.Reading{}, err
	}
	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		if parts := strings.Split(topic, "/"); len(parts) >= 3 {
			r.Location = parts[1]
		}
	}
	return r, nil
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}

	// Not under s.mu: paho callbacks take it too.
	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
	s.metrics.SetMQTTConnected(v)
}
