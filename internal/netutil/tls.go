package netutil

import (
	"crypto/tls"

	"github.com/sirupsen/logrus"
)

// NewTLSConfig returns the TLS settings used for broker connections.
// Certificate verification stays on unless the caller explicitly opts out
// (self-signed brokers on lab networks).
func NewTLSConfig(insecure bool, logger *logrus.Logger) *tls.Config {
	if insecure {
		logger.Warn("TLS certificate verification is disabled")
	}
	return &tls.Config{
		InsecureSkipVerify: insecure,
		MinVersion:         tls.VersionTLS12,
	}
}
