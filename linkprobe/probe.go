package linkprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jonwraymond/bbshealth/observe"
	"github.com/jonwraymond/bbshealth/resilience"
)

// Defaults for Config.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 4403
	DefaultConnectTimeout = 3 * time.Second
	DefaultReadTimeout    = 2 * time.Second
	DefaultAttempts       = 3
	DefaultRetryDelay     = time.Second
)

// RefusedDetail is reported when the radio refuses the connection.
const RefusedDetail = "connection refused; radio accepts a single client and is presumed held by the BBS"

var (
	// ErrBadMarker indicates the reply did not start with the sync marker.
	ErrBadMarker = errors.New("linkprobe: response missing sync marker")

	// ErrShortResponse indicates the peer closed before sending two bytes.
	ErrShortResponse = errors.New("linkprobe: short response")
)

// Config configures a Prober.
type Config struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// Attempts bounds the number of handshakes. Default: 3
	Attempts int

	// RetryDelay is the fixed pause between attempts. Default: 1s
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// Address returns host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Result is the outcome of a probe.
type Result struct {
	Success  bool
	Detail   string
	Attempts int
}

// Prober runs handshakes against one address.
type Prober struct {
	config Config
	logger observe.Logger
}

// NewProber creates a Prober. A nil logger discards output.
func NewProber(config Config, logger observe.Logger) *Prober {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &Prober{config: config.withDefaults(), logger: logger}
}

// Config returns the effective configuration.
func (p *Prober) Config() Config {
	return p.config
}

// Probe runs up to Attempts handshakes with a fixed delay between them and
// stops at the first success. Refusal ends the probe immediately.
func (p *Prober) Probe(ctx context.Context) Result {
	var result Result

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  p.config.Attempts,
		InitialDelay: p.config.RetryDelay,
	})

	err := retry.Execute(ctx, func(ctx context.Context) error {
		result.Attempts++
		detail, err := p.handshake(ctx)
		if err != nil {
			p.logger.Info(ctx, fmt.Sprintf("Connection test attempt %d: FAIL", result.Attempts),
				observe.F("address", p.config.Address()), observe.F("error", err.Error()))
			return err
		}
		p.logger.Info(ctx, fmt.Sprintf("Connection test attempt %d: PASS", result.Attempts),
			observe.F("address", p.config.Address()), observe.F("detail", detail))
		result.Detail = detail
		return nil
	})
	if err != nil {
		result.Detail = failureDetail(err)
		return result
	}

	result.Success = true
	return result
}

func (p *Prober) handshake(ctx context.Context) (string, error) {
	dialer := net.Dialer{Timeout: p.config.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.config.Address())
	if err != nil {
		if errors.Is(err, unix.ECONNREFUSED) {
			return RefusedDetail, nil
		}
		return "", err
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(p.config.ConnectTimeout)); err != nil {
		return "", err
	}
	if _, err := conn.Write(Preamble()); err != nil {
		return "", fmt.Errorf("send preamble: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(p.config.ReadTimeout)); err != nil {
		return "", err
	}
	buf := make([]byte, 1024)
	n, err := io.ReadAtLeast(conn, buf, 2)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", fmt.Errorf("%w: got %d bytes", ErrShortResponse, n)
		}
		return "", fmt.Errorf("read response: %w", err)
	}
	if !HasSyncMarker(buf[:n]) {
		return "", fmt.Errorf("%w: got % x", ErrBadMarker, buf[:2])
	}
	return fmt.Sprintf("handshake ok, %d bytes received", n), nil
}

// failureDetail strips the retry wrapper so the detail shows the transport
// error the last attempt saw.
func failureDetail(err error) string {
	if errors.Is(err, resilience.ErrMaxRetriesExceeded) {
		if u, ok := err.(interface{ Unwrap() []error }); ok {
			errs := u.Unwrap()
			return errs[len(errs)-1].Error()
		}
	}
	return err.Error()
}
