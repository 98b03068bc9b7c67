package pubsub

import (
	"bytes"
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New connects to Pub/Sub for projectID. It exits the process when the client
// cannot be created.
func New(projectID string) (PubSubClient, func()) {
	ctx := context.Background()
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	return NewWithClient(pubSubC)
}

// NewWithClient wraps an existing Pub/Sub client. The teardown stops the
// cached topics and closes pubSubC.
func NewWithClient(pubSubC *pubsub.Client) (PubSubClient, func()) {
	c := &client{
		client: pubSubC,
		topics: make(map[EventType]*pubsub.Topic),
	}
	c.teardown = func() {
		c.mu.Lock()
		for _, t := range c.topics {
			t.Stop()
		}
		c.mu.Unlock()
		pubSubC.Close()
	}
	return c, c.teardown
}

func (c *client) topic(name EventType) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[name]
	if !ok {
		t = c.client.Topic(string(name))
		c.topics[name] = t
	}
	return t
}

// Publish sends data to topic and waits for the server to acknowledge it.
func (c *client) Publish(topic EventType, data any, attributes map[string]string) error {
	ctx := context.Background()
	msgpackData, err := Encode(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data:       msgpackData,
		Attributes: attributes,
	}
	result := c.topic(topic).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("Published message", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	if err := Decode(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}

// Encode marshals v as msgpack using its json field names, so the wire field
// names match the websocket feed.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode.
func Decode(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}
	return nil
}
