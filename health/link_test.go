package health

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/bbshealth/config"
	"github.com/jonwraymond/bbshealth/linkprobe"
)

func radioFunc(r config.Radio) func() (config.Radio, bool) {
	return func() (config.Radio, bool) { return r, true }
}

func TestLinkChecker_SkipsNonTCP(t *testing.T) {
	c := NewLinkChecker(LinkCheckerConfig{
		Radio: radioFunc(config.Radio{InterfaceType: "serial"}),
	})

	r := c.Check(context.Background())
	assert.Equal(t, StatusSkipped, r.Status)
	assert.Contains(t, r.Message, `"serial"`)
	assert.Equal(t, "link", c.Name())
}

func TestLinkChecker_SkipsWithoutConfig(t *testing.T) {
	r := NewLinkChecker(LinkCheckerConfig{}).Check(context.Background())
	assert.Equal(t, StatusSkipped, r.Status)
}

func TestLinkChecker_RefusedIsHealthy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c := NewLinkChecker(LinkCheckerConfig{
		Radio: radioFunc(config.Radio{InterfaceType: "TCP", Hostname: "127.0.0.1", Port: port}),
		Probe: linkprobe.Config{RetryDelay: time.Millisecond},
	})

	r := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status, r.Message)
	assert.Contains(t, r.Message, "connection refused")
}

func TestLinkChecker_BadMarkerDegraded(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte("no"))
			_ = conn.Close()
		}
	}()

	c := NewLinkChecker(LinkCheckerConfig{
		Radio: radioFunc(config.Radio{
			InterfaceType: "tcp",
			Hostname:      "127.0.0.1",
			Port:          ln.Addr().(*net.TCPAddr).Port,
		}),
		Probe: linkprobe.Config{Attempts: 2, RetryDelay: time.Millisecond, ReadTimeout: 200 * time.Millisecond},
	})

	r := c.Check(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
	assert.ErrorIs(t, r.Error, ErrLinkUnreachable)
	assert.Equal(t, 2, r.Details["attempts"])
}
