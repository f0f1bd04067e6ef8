package httpx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 10 * time.Second
	DefaultMaxConnsPerHost     = 64
	DefaultMaxIdleConnDuration = 30 * time.Second
	DefaultMaxResponseBodySize = 16 * 1024 * 1024
)

type FastHTTPClientOption func(*fasthttp.Client, *FastHTTPClient)

func WithTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(c *fasthttp.Client, _ *FastHTTPClient) {
		if timeout > 0 {
			c.ReadTimeout = timeout
			c.WriteTimeout = timeout
		}
	}
}

func WithMaxConnsPerHost(n int) FastHTTPClientOption {
	return func(c *fasthttp.Client, _ *FastHTTPClient) {
		if n > 0 {
			c.MaxConnsPerHost = n
		}
	}
}

func WithUserAgent(userAgent string) FastHTTPClientOption {
	return func(_ *fasthttp.Client, f *FastHTTPClient) {
		f.userAgent = userAgent
	}
}

// FastHTTPClient adapts fasthttp to the net/http shaped Client interface so
// provider clients can be tested with a plain mock.
type FastHTTPClient struct {
	client    *fasthttp.Client
	userAgent string
}

func NewFastHTTPClient(opts ...FastHTTPClientOption) Client {
	f := &FastHTTPClient{
		client: &fasthttp.Client{
			ReadTimeout:         DefaultTimeout,
			WriteTimeout:        DefaultTimeout,
			MaxConnsPerHost:     DefaultMaxConnsPerHost,
			MaxIdleConnDuration: DefaultMaxIdleConnDuration,
			MaxResponseBodySize: DefaultMaxResponseBodySize,
		},
	}
	for _, opt := range opts {
		opt(f.client, f)
	}
	return f
}

func (c *FastHTTPClient) Do(req *http.Request) (*http.Response, error) {
	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	fastReq.SetRequestURI(req.URL.String())
	fastReq.Header.SetMethod(req.Method)
	for key, values := range req.Header {
		for _, value := range values {
			fastReq.Header.Add(key, value)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		fastReq.Header.SetUserAgent(c.userAgent)
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		fastReq.SetBodyRaw(body)
	}

	var err error
	if deadline, ok := req.Context().Deadline(); ok {
		err = c.client.DoDeadline(fastReq, fastResp, deadline)
	} else {
		err = c.client.Do(fastReq, fastResp)
	}
	if err != nil {
		return nil, err
	}

	// fastResp's buffer is reused after release.
	body := append([]byte(nil), fastResp.Body()...)
	headers := make(http.Header)
	fastResp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	status := fastResp.StatusCode()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
