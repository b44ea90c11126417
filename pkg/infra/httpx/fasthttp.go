package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Default values for FastHTTPClient options
const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxConnsPerHost     = 512
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultMaxResponseBodySize = 8 * 1024 * 1024
)

// FastHTTPClientOptions contains configuration for the FastHTTP client
type FastHTTPClientOptions struct {
	// Timeout is the maximum duration for the entire request (read + write)
	Timeout time.Duration

	// InsecureSkipVerify controls whether to skip TLS certificate verification
	InsecureSkipVerify bool

	// MaxConnsPerHost is the maximum number of concurrent connections per host
	MaxConnsPerHost int

	// MaxIdleConnDuration is the maximum duration for keeping idle connections open
	MaxIdleConnDuration time.Duration

	// MaxResponseBodySize is the maximum response body size to read
	MaxResponseBodySize int

	// UserAgent is the default User-Agent header value
	UserAgent string
}

// FastHTTPClientOption is a function that configures FastHTTPClientOptions
type FastHTTPClientOption func(*FastHTTPClientOptions)

// WithTimeout sets the overall request timeout
func WithTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.Timeout = timeout
	}
}

// WithInsecureSkipVerify sets whether to skip TLS certificate verification
func WithInsecureSkipVerify(skip bool) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.InsecureSkipVerify = skip
	}
}

// WithMaxConnsPerHost sets the maximum connections per host
func WithMaxConnsPerHost(max int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxConnsPerHost = max
	}
}

// WithUserAgent sets the default User-Agent header
func WithUserAgent(userAgent string) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.UserAgent = userAgent
	}
}

type FastHTTPClient struct {
	client    *fasthttp.Client
	userAgent string
}

// NewFastHTTPClient creates a new FastHTTPClient with the given options.
// If no options are provided, sensible defaults are used.
func NewFastHTTPClient(opts ...FastHTTPClientOption) Client {
	options := &FastHTTPClientOptions{
		Timeout:             DefaultTimeout,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		MaxIdleConnDuration: DefaultMaxIdleConnDuration,
		MaxResponseBodySize: DefaultMaxResponseBodySize,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := &fasthttp.Client{
		MaxConnsPerHost:     options.MaxConnsPerHost,
		MaxIdleConnDuration: options.MaxIdleConnDuration,
		MaxResponseBodySize: options.MaxResponseBodySize,
		ReadTimeout:         options.Timeout,
		WriteTimeout:        options.Timeout,
	}

	if options.InsecureSkipVerify {
		client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // intentionally configurable
		}
	}

	return &FastHTTPClient{
		client:    client,
		userAgent: options.UserAgent,
	}
}

func (c *FastHTTPClient) Do(req *http.Request) (*http.Response, error) {
	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	if req.URL != nil {
		fastReq.SetRequestURI(req.URL.String())
	}
	fastReq.Header.SetMethod(req.Method)

	for key, values := range req.Header {
		for _, value := range values {
			fastReq.Header.Set(key, value)
		}
	}

	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		fastReq.Header.Set("User-Agent", c.userAgent)
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		fastReq.SetBodyRaw(body)
		_ = req.Body.Close()
	}

	// Honor the request context deadline when it is shorter than the
	// client-wide timeout.
	var err error
	if deadline, ok := req.Context().Deadline(); ok {
		err = c.client.DoDeadline(fastReq, fastResp, deadline)
	} else {
		err = c.client.Do(fastReq, fastResp)
	}
	if err != nil {
		return nil, err
	}

	body := append([]byte(nil), fastResp.Body()...)
	body, _, err = DecodeBody(fastResp, body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	header := make(http.Header)
	fastResp.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})

	return &http.Response{
		StatusCode:    fastResp.StatusCode(),
		Status:        http.StatusText(fastResp.StatusCode()),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// IsTimeout reports whether an error returned by Do was a deadline problem.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, fasthttp.ErrDialTimeout) ||
		errors.Is(err, fasthttp.ErrTLSHandshakeTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
