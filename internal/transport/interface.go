package transport

import "context"

// Connection is the client side of one interview exchange. Implementations
// deliver inbound binary frames on AudioIn and parsed control messages on
// Messages; both channels close when the peer goes away.
type Connection interface {
	Send(ctx context.Context, event ServerEvent) error
	Messages() <-chan ClientEnvelope
	AudioIn() <-chan []byte
	IsConnected() bool
	Close() error
}
