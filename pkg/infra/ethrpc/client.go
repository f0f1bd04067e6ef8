package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/qscore-labs/qscore/pkg/domain"
	"github.com/qscore-labs/qscore/pkg/infra/httpx"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const providerName = "ethereum"

// Backend is the subset of ethclient.Client used here.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Config struct {
	RPCURL      string
	Timeout     time.Duration
	ENSRegistry string
	MaxFailures uint32
	OpenTimeout time.Duration
}

type Client struct {
	backend  Backend
	closer   func()
	breaker  httpx.CircuitBreaker
	timeout  time.Duration
	registry common.Address
	logger   *logrus.Logger
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, cfg Config, logger *logrus.Logger) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("ethereum rpc url is required")
	}
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc: %w", err)
	}
	c := NewClient(eth, cfg, logger)
	c.closer = eth.Close
	return c, nil
}

func NewClient(backend Backend, cfg Config, logger *logrus.Logger) *Client {
	registry := cfg.ENSRegistry
	if registry == "" {
		registry = DefaultENSRegistry
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}
	return &Client{
		backend: backend,
		breaker: httpx.NewCircuitBreaker(httpx.BreakerSettings{
			Name:        providerName,
			Timeout:     openTimeout,
			MaxFailures: maxFailures,
		}, logger),
		timeout:  cfg.Timeout,
		registry: common.HexToAddress(registry),
		logger:   logger,
	}
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	var balance *big.Int
	err := c.call(ctx, "balance", func(ctx context.Context) error {
		var err error
		balance, err = c.backend.BalanceAt(ctx, common.HexToAddress(address), nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *Client) Nonce(ctx context.Context, address string) (uint64, error) {
	var nonce uint64
	err := c.call(ctx, "nonce", func(ctx context.Context) error {
		var err error
		nonce, err = c.backend.NonceAt(ctx, common.HexToAddress(address), nil)
		return err
	})
	return nonce, err
}

func (c *Client) IsContract(ctx context.Context, address string) (bool, error) {
	var code []byte
	err := c.call(ctx, "code", func(ctx context.Context) error {
		var err error
		code, err = c.backend.CodeAt(ctx, common.HexToAddress(address), nil)
		return err
	})
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// ResolveName returns the lowercase hex address an ENS name points to.
func (c *Client) ResolveName(ctx context.Context, name string) (string, error) {
	node := NameHash(name)
	resolver, err := c.resolverOf(ctx, node)
	if err != nil {
		return "", err
	}
	if resolver == (common.Address{}) {
		return "", fmt.Errorf("%s: %w", name, domain.ErrNameNotFound)
	}

	addr, err := c.addrOf(ctx, resolver, node)
	if err != nil {
		return "", err
	}
	if addr == (common.Address{}) {
		return "", fmt.Errorf("%s: %w", name, domain.ErrNameNotFound)
	}
	return strings.ToLower(addr.Hex()), nil
}

// LookupAddress returns the primary ENS name of address, or "" when none is
// set or the name does not resolve back to address.
func (c *Client) LookupAddress(ctx context.Context, address string) (string, error) {
	addr := common.HexToAddress(address)
	node := ReverseNode(addr)

	resolver, err := c.resolverOf(ctx, node)
	if err != nil || resolver == (common.Address{}) {
		return "", err
	}

	var ret []byte
	err = c.call(ctx, "ens_name", func(ctx context.Context) error {
		var err error
		ret, err = c.backend.CallContract(ctx, ethereum.CallMsg{To: &resolver, Data: nodeCall(nameSelector, node)}, nil)
		return err
	})
	if err != nil {
		return "", err
	}
	name, err := decodeString(ret)
	if err != nil {
		return "", domain.NewUpstreamError(providerName, err)
	}
	if name == "" {
		return "", nil
	}

	forward, err := c.ResolveName(ctx, name)
	if errors.Is(err, domain.ErrNameNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if forward != strings.ToLower(addr.Hex()) {
		c.logger.WithFields(logrus.Fields{
			"address": address,
			"name":    name,
		}).Debug("reverse record does not match forward resolution")
		return "", nil
	}
	return name, nil
}

func (c *Client) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	return c.addressCall(ctx, "ens_resolver", c.registry, nodeCall(resolverSelector, node))
}

func (c *Client) addrOf(ctx context.Context, resolver common.Address, node common.Hash) (common.Address, error) {
	return c.addressCall(ctx, "ens_addr", resolver, nodeCall(addrSelector, node))
}

func (c *Client) addressCall(ctx context.Context, op string, to common.Address, data []byte) (common.Address, error) {
	var ret []byte
	err := c.call(ctx, op, func(ctx context.Context) error {
		var err error
		ret, err = c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		return err
	})
	if err != nil {
		return common.Address{}, err
	}
	if len(ret) == 0 {
		return common.Address{}, nil
	}
	addr, err := decodeAddress(ret)
	if err != nil {
		return common.Address{}, domain.NewUpstreamError(providerName, err)
	}
	return addr, nil
}

// call runs fn under the per-call timeout and the breaker, recording metrics.
// Failures come back as *domain.UpstreamError.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.breaker.Execute(func() error { return fn(ctx) })
	prometheus.ObserveUpstream(providerName, op, start, err)
	if err != nil {
		c.logger.WithError(err).WithField("operation", op).Warn("ethereum rpc call failed")
		return domain.NewUpstreamError(providerName, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
