package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/plant-station/internal/eventlog"
)

// DefaultOutboxSize bounds the number of messages held while offline.
const DefaultOutboxSize = 100

// client is the subset of paho.Client used by RealPublisher.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are queued and replayed, in order, on reconnect.
type RealPublisher struct {
	client   client
	deviceID string
	timeout  time.Duration

	// sendMu orders sends; a replay holds it until the queue is drained.
	sendMu sync.Mutex

	mu    sync.Mutex
	queue *outbox
}

func newPublisher(c client, deviceID string) *RealPublisher {
	return &RealPublisher{
		client:   c,
		deviceID: deviceID,
		timeout:  5 * time.Second,
		queue:    newOutbox(DefaultOutboxSize),
	}
}

// NewRealPublisher connects to broker. If the broker is unreachable the
// publisher is still returned; paho keeps retrying in the background and
// messages are queued until it connects.
func NewRealPublisher(broker, deviceID string) (*RealPublisher, error) {
	p := newPublisher(nil, deviceID)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("plant-station-"+deviceID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(SystemTopic(deviceID), string(will), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			p.replay()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	c := paho.NewClient(opts)
	p.client = c

	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, queueing messages", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// PublishTelemetry sends a telemetry message (QoS 0).
func (p *RealPublisher) PublishTelemetry(t Telemetry) error {
	payload, err := FormatTelemetry(t)
	if err != nil {
		return fmt.Errorf("format telemetry: %w", err)
	}
	return p.publish(message{topic: TelemetryTopic(p.deviceID), payload: payload})
}

// PublishEvent sends an event-log entry (QoS 0).
func (p *RealPublisher) PublishEvent(e eventlog.Entry) error {
	payload, err := FormatEvent(e)
	if err != nil {
		return fmt.Errorf("format event: %w", err)
	}
	return p.publish(message{topic: EventsTopic(p.deviceID), payload: payload})
}

// PublishSystem sends a lifecycle event (QoS 1).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(message{
		topic:    SystemTopic(p.deviceID),
		payload:  payload,
		qos:      1,
		retained: event.Retained,
	})
}

// IsConnected reports whether the broker connection is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Queued returns the number of messages waiting for a connection.
func (p *RealPublisher) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

func (p *RealPublisher) publish(m message) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.queue.add(m)
		p.mu.Unlock()
		return nil
	}
	pending := p.queue.take()
	p.mu.Unlock()

	// Connected before the OnConnect replay ran: older messages go first.
	p.sendAll(pending)
	return p.send(m)
}

func (p *RealPublisher) send(m message) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// replay sends everything queued while offline.
func (p *RealPublisher) replay() {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	msgs := p.queue.take()
	p.mu.Unlock()

	if len(msgs) > 0 {
		log.Printf("mqtt: connected, replaying %d queued messages", len(msgs))
	}
	p.sendAll(msgs)
}

func (p *RealPublisher) sendAll(msgs []message) {
	for _, m := range msgs {
		if err := p.send(m); err != nil {
			log.Printf("mqtt: replay failed: %v", err)
		}
	}
}
