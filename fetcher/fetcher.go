// Package fetcher performs the client side of a Gopher request: connect, send
// one selector, read back a bounded response.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"burrow/logging"
)

const (
	DefaultPort             = 70
	DefaultTimeoutSeconds   = 15
	DefaultMaxResponseBytes = 512 * 1024

	readChunk = 4096
)

// ErrConnection matches every transport failure below.
var ErrConnection = errors.New("fetcher: connection failed")

var (
	ErrResolve = fmt.Errorf("%w: dns resolution failed", ErrConnection)
	ErrSocket  = fmt.Errorf("%w: failed to create socket", ErrConnection)
	ErrConnect = fmt.Errorf("%w: connect failed", ErrConnection)
	ErrSend    = fmt.Errorf("%w: failed to send request", ErrConnection)
)

// Result is the raw response to one request.
type Result struct {
	Body      []byte
	Truncated bool // response exceeded MaxResponseBytes and was cut there
	FetchTime time.Duration
	RequestID string
}

// Options configures the fetcher behavior.
type Options struct {
	TimeoutSeconds   int // applied to connect and to each send/receive
	MaxResponseBytes int
	Logger           zerolog.Logger
}

// DefaultOptions returns the protocol defaults: 15 second timeout, 512 KiB cap.
func DefaultOptions() Options {
	return Options{
		TimeoutSeconds:   DefaultTimeoutSeconds,
		MaxResponseBytes: DefaultMaxResponseBytes,
		Logger:           logging.Logger(),
	}
}

// Client fetches Gopher resources. It holds no connection state between
// calls and never retries.
type Client struct {
	opts     Options
	resolver *net.Resolver
}

// New creates a client. Zero or negative limits fall back to the defaults.
func New(o Options) *Client {
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if o.MaxResponseBytes <= 0 {
		o.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return &Client{opts: o, resolver: net.DefaultResolver}
}

// Timeout returns the configured per-operation timeout.
func (c *Client) Timeout() time.Duration {
	return time.Duration(c.opts.TimeoutSeconds) * time.Second
}

// MaxResponseBytes returns the response size cap.
func (c *Client) MaxResponseBytes() int {
	return c.opts.MaxResponseBytes
}

// Fetch sends selector to host:port and returns everything the server sends
// back until it closes the connection or the size cap is exceeded. An empty
// selector requests the root menu. Transport failures are returned as errors
// matching ErrConnection; a receive failure after the request was sent ends
// the read and returns what arrived so far, unless ctx was cancelled.
func (c *Client) Fetch(ctx context.Context, host, selector string, port int) (*Result, error) {
	if port <= 0 {
		port = DefaultPort
	}
	start := time.Now()
	reqID := uuid.NewString()
	logger := c.opts.Logger.With().
		Str("request_id", reqID).
		Str("host", host).
		Int("port", port).
		Str("selector", selector).
		Logger()

	conn, err := c.connect(ctx, host, port)
	if err != nil {
		logger.Debug().Err(err).Msg("connect failed")
		return nil, err
	}
	defer conn.Close()

	// Unblock reads and writes if the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	timeout := c.Timeout()
	conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, selector+"\r\n"); err != nil {
		logger.Debug().Err(err).Msg("send failed")
		return nil, fmt.Errorf("%w: %w", ErrSend, err)
	}

	body, truncated, err := c.receive(conn)
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Debug().Err(ctxErr).Int("bytes", len(body)).Msg("fetch cancelled")
		return nil, fmt.Errorf("%w: %w", ErrConnection, ctxErr)
	}
	if err != nil {
		logger.Debug().Err(err).Int("bytes", len(body)).Msg("receive ended early")
	}

	res := &Result{
		Body:      body,
		Truncated: truncated,
		FetchTime: time.Since(start),
		RequestID: reqID,
	}
	logger.Debug().
		Int("bytes", len(body)).
		Bool("truncated", truncated).
		Dur("elapsed", res.FetchTime).
		Msg("fetched")
	return res, nil
}

// connect resolves host and dials its first address.
func (c *Client) connect(ctx context.Context, host string, port int) (net.Conn, error) {
	timeout := c.Timeout()

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	addrs, err := c.resolver.LookupHost(lookupCtx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s: no addresses", ErrResolve, host)
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addrs[0], strconv.Itoa(port)))
	if err != nil {
		if isSocketError(err) {
			return nil, fmt.Errorf("%w: %w", ErrSocket, err)
		}
		return nil, fmt.Errorf("%w: %s:%d: %w", ErrConnect, host, port, err)
	}
	return conn, nil
}

// receive reads until EOF, a read error, or until more than the cap has been
// read. Truncated bodies are exactly MaxResponseBytes long.
func (c *Client) receive(conn net.Conn) ([]byte, bool, error) {
	limit := c.opts.MaxResponseBytes
	timeout := c.Timeout()

	var body []byte
	buf := make([]byte, readChunk)
	for {
		conn.SetReadDeadline(time.Now().Add(timeout))
		n, err := conn.Read(buf)
		body = append(body, buf[:n]...)
		if len(body) > limit {
			return body[:limit], true, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return body, false, nil
			}
			return body, false, err
		}
	}
}

// isSocketError reports failures to create the local socket rather than to
// reach the peer.
func isSocketError(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) || (opErr.Op != "socket" && opErr.Op != "dial") {
		return false
	}
	return errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ENOBUFS) ||
		errors.Is(err, unix.EAFNOSUPPORT) ||
		errors.Is(err, unix.EPROTONOSUPPORT)
}
