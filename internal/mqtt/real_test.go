package mqtt

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/plant-station/internal/eventlog"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	open         bool
	publishErr   error
	sent         []published
	disconnected bool

	// onPublish, if set, runs before each publish is recorded.
	onPublish func()
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if c.onPublish != nil {
		c.onPublish()
	}
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	return doneToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestRealPublisherSendsWhenConnected(t *testing.T) {
	c := &fakeClient{open: true}
	p := newPublisher(c, "user_1")

	if err := p.PublishEvent(eventlog.Entry{Time: 1770070692, Type: eventlog.Shake}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Timestamp: testTime, Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.sent) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(c.sent))
	}
	if c.sent[0].topic != "plant-station/user_1/events" || c.sent[0].qos != 0 || c.sent[0].retained {
		t.Errorf("unexpected event publish: %+v", c.sent[0])
	}
	if c.sent[1].topic != "plant-station/user_1/system" || c.sent[1].qos != 1 || !c.sent[1].retained {
		t.Errorf("unexpected system publish: %+v", c.sent[1])
	}
}

func TestRealPublisherQueuesWhileOffline(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c, "user_1")

	p.PublishTelemetry(Telemetry{Timestamp: testTime, Trigger: eventlog.Regular})
	p.PublishEvent(eventlog.Entry{Time: 1770070692, Type: eventlog.Regular})

	if len(c.sent) != 0 {
		t.Fatalf("expected nothing sent while offline, got %d", len(c.sent))
	}
	if p.Queued() != 2 {
		t.Fatalf("expected 2 queued, got %d", p.Queued())
	}

	c.open = true
	p.replay()

	if len(c.sent) != 2 {
		t.Fatalf("expected 2 replayed publishes, got %d", len(c.sent))
	}
	if c.sent[0].topic != "plant-station/user_1/telemetry" || c.sent[1].topic != "plant-station/user_1/events" {
		t.Errorf("replay out of order: %s, %s", c.sent[0].topic, c.sent[1].topic)
	}
	if p.Queued() != 0 {
		t.Errorf("expected empty queue after replay, got %d", p.Queued())
	}
}

func TestRealPublisherSendsQueuedBeforeNewAfterReconnect(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c, "user_1")

	p.PublishEvent(eventlog.Entry{Time: 1, Type: eventlog.Regular})
	p.PublishEvent(eventlog.Entry{Time: 2, Type: eventlog.Regular})

	// Link is back but the OnConnect replay has not run yet.
	c.open = true
	if err := p.PublishEvent(eventlog.Entry{Time: 3, Type: eventlog.Shake}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.sent) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(c.sent))
	}
	for i, want := range []string{"1970-01-01T00:00:01Z", "1970-01-01T00:00:02Z", "1970-01-01T00:00:03Z"} {
		if !strings.Contains(string(c.sent[i].payload), want) {
			t.Errorf("publish %d: got %s, want timestamp %s", i, c.sent[i].payload, want)
		}
	}
	if p.Queued() != 0 {
		t.Errorf("expected empty queue, got %d", p.Queued())
	}
}

func TestRealPublisherPublishWaitsForReplay(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c, "user_1")

	p.PublishEvent(eventlog.Entry{Time: 1, Type: eventlog.Regular})
	p.PublishEvent(eventlog.Entry{Time: 2, Type: eventlog.Regular})
	c.open = true

	done := make(chan error, 1)
	var once sync.Once
	c.onPublish = func() {
		// A station publish arrives while the first queued message is in flight.
		once.Do(func() {
			go func() {
				done <- p.PublishEvent(eventlog.Entry{Time: 3, Type: eventlog.Shake})
			}()
			time.Sleep(20 * time.Millisecond)
		})
	}

	p.replay()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.sent) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(c.sent))
	}
	if !strings.Contains(string(c.sent[2].payload), `"type":"shake"`) {
		t.Errorf("new message overtook the replay: %s", c.sent[2].payload)
	}
}

func TestRealPublisherPublishError(t *testing.T) {
	c := &fakeClient{open: true, publishErr: errors.New("not authorized")}
	p := newPublisher(c, "user_1")

	err := p.PublishEvent(eventlog.Entry{Type: eventlog.Shake})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, c.publishErr) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}

func TestRealPublisherConnectionStatus(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c, "user_1")

	var status ConnectionStatus = p
	if status.IsConnected() {
		t.Error("expected disconnected")
	}
	c.open = true
	if !status.IsConnected() {
		t.Error("expected connected")
	}

	p.Close()
	if !c.disconnected {
		t.Error("expected Disconnect on Close")
	}
}
