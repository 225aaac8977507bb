package messaging

import (
	"context"
)

// Channel names for booking events.
const (
	ChannelAppointmentCreated = "appointment.created"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
