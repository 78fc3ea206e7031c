package transmission

import "github.com/angler-ua/deviceconf/internal/config"

// Transmitter defines the interface for distributing device configuration
type Transmitter interface {
	Transmit(cfg *config.Config) error
	IsConnected() bool
}
