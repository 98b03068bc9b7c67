package pubsub

// PubSubClient publishes msgpack-encoded messages and decodes received ones.
type PubSubClient interface {
	Publish(topic EventType, data any, attributes map[string]string) error
	ProcessMessage(data []byte, returnValue any) error
}
