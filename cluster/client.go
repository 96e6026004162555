package cluster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/sync/errgroup"

	"github.com/pinkhop/matrixprofile-go"
)

var (
	ErrNoWorkers    = errors.New("cluster has no workers")
	ErrWorkerFailed = errors.New("join worker failed")
)

// DefaultTimeout bounds a single join request.
const DefaultTimeout = 5 * time.Minute

// maxErrorBytes bounds how much of a failed response body is kept in the
// returned error.
const maxErrorBytes = 4 << 10

// Client sends joins to a set of join workers, rotating through them in
// order. A Client is safe for concurrent use.
type Client struct {
	addrs      []string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	next       atomic.Uint64
}

var _ matrixprofile.JoinEngine = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the time allowed for a single join. A timeout <= 0 leaves
// requests bounded only by their context.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClientLogger sets the structured logger used by the client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a client for the workers at addrs. An address without a
// scheme is assumed to be plain HTTP.
func NewClient(addrs []string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if !strings.Contains(addr, "://") {
			addr = "http://" + addr
		}
		c.addrs = append(c.addrs, strings.TrimRight(addr, "/"))
	}
	if len(c.addrs) == 0 {
		return nil, ErrNoWorkers
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Workers returns the base URLs of the workers.
func (c *Client) Workers() []string {
	return append([]string(nil), c.addrs...)
}

// Join sends the join to the next worker.
func (c *Client) Join(
	ctx context.Context,
	seriesA []float64,
	m int,
	seriesB []float64,
	ignoreTrivial bool,
) (*matrixprofile.Profile, error) {
	addr := c.addrs[(c.next.Add(1)-1)%uint64(len(c.addrs))]

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := sonnet.Marshal(newJoinRequest(seriesA, m, seriesB, ignoreTrivial))
	if err != nil {
		return nil, fmt.Errorf("encode join request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/v1/join", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	began := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, fmt.Errorf("%w: %s: %s: %s", ErrWorkerFailed, addr, resp.Status, strings.TrimSpace(string(msg)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("worker %s: read response: %w", addr, err)
	}
	var out JoinResponse
	if err := sonnet.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("worker %s: decode response: %w", addr, err)
	}
	if len(out.Distances) != len(out.Indices) {
		return nil, fmt.Errorf("%w: %s: returned %d distances and %d indices",
			ErrWorkerFailed, addr, len(out.Distances), len(out.Indices))
	}

	c.logger.Debug("remote join complete", "worker", addr, "m", m, "elapsed", time.Since(began))

	return out.profile(), nil
}

// Ping checks the health endpoint of every worker concurrently and returns
// the first failure.
func (c *Client) Ping(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range c.addrs {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, addr+"/healthz", nil)
			if err != nil {
				return err
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("worker %s: %w", addr, err)
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%w: %s: %s", ErrWorkerFailed, addr, resp.Status)
			}
			return nil
		})
	}
	return g.Wait()
}
