package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrUninitialized is returned by Client when Configure has never succeeded.
var ErrUninitialized = errors.New("transport not initialized: call Configure first")

const (
	// DefaultConnectTimeout bounds dialing and the TLS handshake.
	DefaultConnectTimeout = 15 * time.Second
	// DefaultReadTimeout bounds the wait for response headers.
	DefaultReadTimeout = 30 * time.Second

	defaultUserAgent = "mycoach/0.1"
)

// Options tune the HTTP client built on every reconfiguration.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string
	Logger         *slog.Logger
	Metrics        *Metrics
}

// Transport owns the HTTP client bound to the user's base URL.
type Transport struct {
	opts Options

	mu         sync.RWMutex
	base       *url.URL
	client     *http.Client
	generation uint64
}

// New returns an unconfigured Transport. Configure must be called before use.
func New(opts Options) *Transport {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.ReadTimeout < opts.ConnectTimeout {
		opts.ReadTimeout = opts.ConnectTimeout
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Transport{opts: opts}
}

// Configure binds the transport to rawURL. Reconfiguring with a URL that
// normalizes to the active base is a no-op. Requests already dispatched keep
// the client they started with.
func (t *Transport) Configure(rawURL string) error {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return err
	}
	base, err := url.Parse(normalized)
	if err != nil {
		return fmt.Errorf("parse base url %q: %w", rawURL, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil && t.base != nil && t.base.String() == normalized {
		return nil
	}

	previous := t.client
	t.client = t.buildClient()
	t.base = base
	t.generation++

	if previous != nil {
		previous.CloseIdleConnections()
	}
	t.opts.Logger.Info("transport configured", "base_url", normalized, "generation", t.generation)
	return nil
}

// Client returns the active HTTP client and base URL, or ErrUninitialized.
func (t *Transport) Client() (*http.Client, *url.URL, error) {
	if t == nil {
		return nil, nil, ErrUninitialized
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.client == nil || t.base == nil {
		return nil, nil, ErrUninitialized
	}
	base := *t.base
	return t.client, &base, nil
}

// MustClient is Client for callers that treat a missing configuration as a
// programming error.
func (t *Transport) MustClient() (*http.Client, *url.URL) {
	client, base, err := t.Client()
	if err != nil {
		panic(err)
	}
	return client, base
}

// BaseURL returns the normalized active base URL or "" when unconfigured.
func (t *Transport) BaseURL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.base == nil {
		return ""
	}
	return t.base.String()
}

// Generation counts client rebuilds.
func (t *Transport) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Close releases idle connections. The transport stays configured.
func (t *Transport) Close() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.client != nil {
		t.client.CloseIdleConnections()
	}
}

func (t *Transport) buildClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   t.opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   t.opts.ConnectTimeout,
		ResponseHeaderTimeout: t.opts.ReadTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          16,
	}
	return &http.Client{
		Transport: &loggingRoundTripper{
			next:      base,
			logger:    t.opts.Logger,
			metrics:   t.opts.Metrics,
			userAgent: t.opts.UserAgent,
		},
		Timeout: t.opts.ConnectTimeout + t.opts.ReadTimeout,
	}
}

// Normalize trims rawURL, defaults the scheme to http and makes the path end
// with exactly one slash. Query and fragment are dropped.
func Normalize(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q: missing host", rawURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
