package netutil

import (
	"crypto/tls"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewTLSConfig(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	secure := NewTLSConfig(false, logger)
	assert.False(t, secure.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), secure.MinVersion)

	insecure := NewTLSConfig(true, logger)
	assert.True(t, insecure.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), insecure.MinVersion)
}
