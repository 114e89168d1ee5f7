// Package httpclient provides a configurable HTTP client with proxy support
// and optional browser-like TLS fingerprinting.
package httpclient

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spoc-progress/pkg/config"
	"spoc-progress/pkg/logging"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
)

// Transport modes reported by Client.Mode.
const (
	ModeDirect      = "direct"
	ModeProxy       = "proxy"
	ModeFingerprint = "fingerprint"
)

// Client wraps http.Client with proxy routing and a per-call timeout.
type Client struct {
	httpClient *http.Client
	mode       string
	log        *logging.Logger
}

// dialFunc matches net.Dialer.DialContext.
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func newDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
}

// New creates a new HTTP client with the given configuration.
// An unusable proxy setting is logged and the client falls back to a direct connection.
func New(cfg *config.Config, log *logging.Logger) *Client {
	c := &Client{
		log: log.WithComponent("httpclient"),
	}

	transport := &http.Transport{
		DialContext:           newDialer().DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cfg.DisableSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c.mode = ModeDirect
	dial := dialFunc(newDialer().DialContext)
	if cfg.GlobalProxy != "" {
		if proxyDial, ok := c.applyProxy(transport, cfg.GlobalProxy); ok {
			c.mode = ModeProxy
			if proxyDial != nil {
				dial = proxyDial
			}
		}
	}

	var rt http.RoundTripper = transport
	if cfg.TLSFingerprint {
		rt = newUTLSRoundTripper(dial, transport, cfg.DisableSSL)
		c.mode = ModeFingerprint
	}

	c.httpClient = &http.Client{
		Transport: rt,
		Timeout:   cfg.RequestTimeout,
	}

	c.log.Debug("http client ready", "mode", c.mode, "timeout", cfg.RequestTimeout.String())
	return c
}

// applyProxy configures transport for proxyURL and returns the matching dialer
// for the fingerprinting round tripper: the SOCKS5 dialer, or an HTTP CONNECT
// tunnel for http(s) proxies.
func (c *Client) applyProxy(transport *http.Transport, proxyURL string) (dialFunc, bool) {
	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		c.log.Error("failed to parse proxy URL", "url", proxyURL, "error", err)
		return nil, false
	}

	switch parsedURL.Scheme {
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(parsedURL, proxy.Direct)
		if err != nil {
			c.log.Error("failed to create SOCKS5 dialer", "error", err)
			return nil, false
		}
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
			return contextDialer.DialContext, true
		}
		transport.Dial = dialer.Dial //nolint:staticcheck // fallback for dialers without context support
		return func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}, true
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsedURL)
		return connectDialer(parsedURL, newDialer().DialContext), true
	default:
		c.log.Warn("unsupported proxy scheme", "scheme", parsedURL.Scheme)
		return nil, false
	}
}

// Mode reports which transport the client is using.
func (c *Client) Mode() string {
	return c.mode
}

// Do executes an HTTP request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// connectDialer opens a tunnel to addr through an HTTP proxy.
func connectDialer(proxyURL *url.URL, dial dialFunc) dialFunc {
	proxyAddr := proxyURL.Host
	if proxyURL.Port() == "" {
		port := "80"
		if proxyURL.Scheme == "https" {
			port = "443"
		}
		proxyAddr = net.JoinHostPort(proxyURL.Hostname(), port)
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, proxyAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to reach proxy: %w", err)
		}

		if proxyURL.Scheme == "https" {
			tlsConn := tls.Client(conn, &tls.Config{ServerName: proxyURL.Hostname()})
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, fmt.Errorf("proxy TLS handshake failed: %w", err)
			}
			conn = tlsConn
		}

		if deadline, ok := ctx.Deadline(); ok {
			conn.SetDeadline(deadline)
			defer conn.SetDeadline(time.Time{})
		}

		connectReq := &http.Request{
			Method: http.MethodConnect,
			URL:    &url.URL{Opaque: addr},
			Host:   addr,
			Header: make(http.Header),
		}
		if user := proxyURL.User; user != nil {
			password, _ := user.Password()
			credentials := base64.StdEncoding.EncodeToString([]byte(user.Username() + ":" + password))
			connectReq.Header.Set("Proxy-Authorization", "Basic "+credentials)
		}

		if err := connectReq.Write(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to send CONNECT: %w", err)
		}
		resp, err := http.ReadResponse(bufio.NewReader(conn), connectReq)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to read CONNECT response: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			conn.Close()
			return nil, fmt.Errorf("proxy refused tunnel to %s: %s", addr, resp.Status)
		}
		return conn, nil
	}
}

// utlsRoundTripper sends HTTPS requests over a uTLS connection that presents
// a Chrome ClientHello, speaking HTTP/2 when the server negotiates it.
type utlsRoundTripper struct {
	dial        dialFunc
	fallback    http.RoundTripper
	insecure    bool
	h2Transport *http2.Transport
}

func newUTLSRoundTripper(dial dialFunc, fallback http.RoundTripper, insecure bool) *utlsRoundTripper {
	return &utlsRoundTripper{
		dial:     dial,
		fallback: fallback,
		insecure: insecure,
		h2Transport: &http2.Transport{
			DisableCompression: false,
			AllowHTTP:          false,
		},
	}
}

func (t *utlsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Plain HTTP has no handshake to disguise
	if req.URL.Scheme != "https" {
		return t.fallback.RoundTrip(req)
	}

	addr := req.URL.Host
	if req.URL.Port() == "" {
		addr = net.JoinHostPort(req.URL.Hostname(), "443")
	}

	conn, err := t.dial(req.Context(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	tlsConfig := &utls.Config{
		ServerName:         req.URL.Hostname(),
		InsecureSkipVerify: t.insecure,
	}
	uconn := utls.UClient(conn, tlsConfig, utls.HelloChrome_Auto)
	if err := uconn.HandshakeContext(req.Context()); err != nil {
		conn.Close()
		return nil, err
	}

	if uconn.ConnectionState().NegotiatedProtocol == "h2" {
		h2Conn, err := t.h2Transport.NewClientConn(uconn)
		if err != nil {
			uconn.Close()
			return nil, err
		}
		resp, err := h2Conn.RoundTrip(req)
		if err != nil {
			uconn.Close()
			return nil, err
		}
		resp.Body = &connCloser{resp.Body, uconn}
		return resp, nil
	}

	return doHTTP1Request(uconn, req)
}

func doHTTP1Request(conn net.Conn, req *http.Request) (*http.Response, error) {
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// One request per connection; closing the body closes the socket
	resp.Body = &connCloser{resp.Body, conn}
	return resp, nil
}

type connCloser struct {
	io.ReadCloser
	conn net.Conn
}

func (c *connCloser) Close() error {
	c.ReadCloser.Close()
	return c.conn.Close()
}

// RedactedHeaders returns a copy of headers safe for logging, with
// credential values shortened.
func RedactedHeaders(headers http.Header) http.Header {
	sensitive := map[string]bool{
		"token":         true,
		"cookie":        true,
		"authorization": true,
	}

	redacted := make(http.Header, len(headers))
	for key, values := range headers {
		if !sensitive[strings.ToLower(key)] {
			redacted[key] = values
			continue
		}
		masked := make([]string, len(values))
		for i, v := range values {
			masked[i] = Mask(v)
		}
		redacted[key] = masked
	}
	return redacted
}

// Mask keeps the first few characters of a secret.
func Mask(v string) string {
	const keep = 6
	if len(v) <= keep {
		return strings.Repeat("*", len(v))
	}
	return v[:keep] + "..."
}
