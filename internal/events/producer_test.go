package events

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDoesNotBlockCaller(t *testing.T) {
	t.Parallel()

	// A broker stand-in that accepts connections and then sits silent, so a
	// write in the request path would hang until the publish timeout.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()

	p := NewProducer(ln.Addr().String(), "user_events")
	defer p.Close()

	start := time.Now()
	p.Publish(context.Background(), "user_registered", 1, map[string]interface{}{"username": "alice"})
	assert.Less(t, time.Since(start), time.Second)
}

func TestPublishNilSafe(t *testing.T) {
	t.Parallel()

	var p *Producer
	p.Publish(context.Background(), "user_registered", 1, nil)
	assert.NoError(t, p.Close())
}
