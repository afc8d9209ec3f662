package utils

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingService(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	addr := ln.Addr().String()
	assert.NoError(t, PingService("http://"+addr, time.Second))

	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	assert.NoError(t, PingServer(port))

	require.NoError(t, ln.Close())
	assert.Error(t, PingService("http://"+addr, 200*time.Millisecond))
	assert.Error(t, PingService("://bad", time.Second))
}
