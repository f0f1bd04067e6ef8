package etherscan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qscore-labs/qscore/pkg/domain"
	"github.com/qscore-labs/qscore/pkg/infra/httpx"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	providerName = "etherscan"

	DefaultBaseURL  = "https://api.etherscan.io/v2/api"
	DefaultChainID  = "1"
	DefaultPageSize = 100
	DefaultMaxPages = 5

	noTransactionsMessage = "No transactions found"
)

var errMalformedResponse = errors.New("malformed response")

type Config struct {
	BaseURL     string
	APIKey      string
	ChainID     string
	Timeout     time.Duration
	PageSize    int
	MaxPages    int
	MaxFailures uint32
	OpenTimeout time.Duration
}

type Client struct {
	http    httpx.Client
	cfg     Config
	breaker httpx.CircuitBreaker
	parsers fastjson.ParserPool
	logger  *logrus.Logger
}

func NewClient(httpClient httpx.Client, cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ChainID == "" {
		cfg.ChainID = DefaultChainID
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &Client{
		http: httpClient,
		cfg:  cfg,
		breaker: httpx.NewCircuitBreaker(httpx.BreakerSettings{
			Name:        providerName,
			Timeout:     cfg.OpenTimeout,
			MaxFailures: cfg.MaxFailures,
		}, logger),
		logger: logger,
	}
}

// FirstOutgoingTransaction returns the time of the earliest transaction sent
// by address, or nil when none is found within MaxPages of history.
func (c *Client) FirstOutgoingTransaction(ctx context.Context, address string) (*time.Time, error) {
	address = strings.ToLower(address)
	for page := 1; page <= c.cfg.MaxPages; page++ {
		ts, done, err := c.scanPage(ctx, address, page)
		if err != nil {
			return nil, err
		}
		if ts != nil || done {
			return ts, nil
		}
	}
	c.logger.WithFields(logrus.Fields{
		"address": address,
		"pages":   c.cfg.MaxPages,
	}).Debug("no outgoing transaction within scanned history")
	return nil, nil
}

// scanPage looks for an outgoing transaction in one ascending page of the
// account's history. done is true when the history has no further pages.
func (c *Client) scanPage(ctx context.Context, address string, page int) (*time.Time, bool, error) {
	body, err := c.fetch(ctx, c.txListURL(address, page))
	if err != nil {
		return nil, false, err
	}

	parser := c.parsers.Get()
	defer c.parsers.Put(parser)

	v, err := parser.ParseBytes(body)
	if err != nil {
		return nil, false, domain.NewUpstreamError(providerName, fmt.Errorf("%w: %v", errMalformedResponse, err))
	}

	status := string(v.GetStringBytes("status"))
	message := string(v.GetStringBytes("message"))
	result := v.Get("result")

	if status != "1" {
		detail := message
		if result != nil && result.Type() == fastjson.TypeString {
			detail = string(result.GetStringBytes())
		}
		switch {
		case message == noTransactionsMessage:
			return nil, true, nil
		case isRateLimit(detail) || isRateLimit(message):
			return nil, false, fmt.Errorf("%s: %s: %w", providerName, detail, domain.ErrRateLimited)
		default:
			return nil, false, domain.NewUpstreamError(providerName, fmt.Errorf("%s: %s", message, detail))
		}
	}

	if result == nil || result.Type() != fastjson.TypeArray {
		return nil, false, domain.NewUpstreamError(providerName, fmt.Errorf("%w: result is not a list", errMalformedResponse))
	}

	txs := result.GetArray()
	for _, tx := range txs {
		if !strings.EqualFold(string(tx.GetStringBytes("from")), address) {
			continue
		}
		raw := string(tx.GetStringBytes("timeStamp"))
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false, domain.NewUpstreamError(providerName, fmt.Errorf("%w: timeStamp %q", errMalformedResponse, raw))
		}
		ts := time.Unix(sec, 0).UTC()
		return &ts, true, nil
	}
	return nil, len(txs) < c.cfg.PageSize, nil
}

func (c *Client) txListURL(address string, page int) string {
	q := url.Values{}
	q.Set("chainid", c.cfg.ChainID)
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("page", strconv.Itoa(page))
	q.Set("offset", strconv.Itoa(c.cfg.PageSize))
	q.Set("sort", "asc")
	if c.cfg.APIKey != "" {
		q.Set("apikey", c.cfg.APIKey)
	}
	return c.cfg.BaseURL + "?" + q.Encode()
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var body []byte
	var rateLimited bool
	start := time.Now()
	err := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimited = true
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
		}
		body, err = httpx.DecodeBody(resp.Header.Get("Content-Encoding"), raw)
		return err
	})
	prometheus.ObserveUpstream(providerName, "txlist", start, err)

	if err != nil {
		c.logger.WithError(err).Warn("etherscan request failed")
		return nil, domain.NewUpstreamError(providerName, err)
	}
	if rateLimited {
		return nil, fmt.Errorf("%s: http 429: %w", providerName, domain.ErrRateLimited)
	}
	return body, nil
}

func isRateLimit(s string) bool {
	return strings.Contains(strings.ToLower(s), "rate limit")
}
