package address

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/qscore-labs/qscore/pkg/domain"
	"github.com/qscore-labs/qscore/pkg/domain/security"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	hexAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	ensNameRegex    = regexp.MustCompile(`^([a-z0-9-]+\.)+eth$`)
)

type ChainReader interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
	Nonce(ctx context.Context, address string) (uint64, error)
	IsContract(ctx context.Context, address string) (bool, error)
}

type NameResolver interface {
	ResolveName(ctx context.Context, name string) (string, error)
	LookupAddress(ctx context.Context, address string) (string, error)
}

type TxHistory interface {
	FirstOutgoingTransaction(ctx context.Context, address string) (*time.Time, error)
}

type FactCache interface {
	GetObservation(ctx context.Context, address string) (security.Observation, bool, error)
	SaveObservation(ctx context.Context, obs security.Observation) error
	GetAddressForName(ctx context.Context, name string) (string, bool, error)
	SaveAddressForName(ctx context.Context, name, address string) error
}

type Resolver interface {
	Resolve(ctx context.Context, input string) (security.AddressFacts, error)
}

type resolver struct {
	logger  *logrus.Logger
	chain   ChainReader
	names   NameResolver
	history TxHistory
	cache   FactCache
	now     func() time.Time
}

// NewResolver builds a Resolver. cache may be nil.
func NewResolver(
	logger *logrus.Logger,
	chain ChainReader,
	names NameResolver,
	history TxHistory,
	cache FactCache,
) Resolver {
	return &resolver{
		logger:  logger,
		chain:   chain,
		names:   names,
		history: history,
		cache:   cache,
		now:     time.Now,
	}
}

// Input is user supplied text classified as a hex address or an ENS name.
type Input struct {
	Address string
	Name    string
}

// ParseInput trims and classifies raw input. Hex addresses are lowercased.
func ParseInput(raw string) (Input, error) {
	s := strings.TrimSpace(raw)
	if hexAddressRegex.MatchString(s) {
		return Input{Address: strings.ToLower(s)}, nil
	}
	name := strings.ToLower(s)
	if ensNameRegex.MatchString(name) {
		return Input{Name: name}, nil
	}
	return Input{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidAddress)
}

func (r *resolver) Resolve(ctx context.Context, raw string) (security.AddressFacts, error) {
	in, err := ParseInput(raw)
	if err != nil {
		return security.AddressFacts{}, err
	}

	address := in.Address
	if in.Name != "" {
		address, err = r.resolveName(ctx, in.Name)
		if err != nil {
			return security.AddressFacts{}, err
		}
	}

	if obs, ok := r.cachedObservation(ctx, address); ok {
		if in.Name != "" {
			obs.EnsName = &in.Name
		}
		return obs.Facts(r.now())
	}

	obs, err := r.observe(ctx, address, in.Name == "")
	if err != nil {
		return security.AddressFacts{}, err
	}

	// Only reverse verified names are cached; the forward name belongs to
	// this request.
	if r.cache != nil {
		if err := r.cache.SaveObservation(ctx, obs); err != nil {
			r.logger.WithError(err).WithField("address", address).Warn("failed to cache observation")
		}
	}

	if in.Name != "" {
		obs.EnsName = &in.Name
	}
	return obs.Facts(r.now())
}

func (r *resolver) resolveName(ctx context.Context, name string) (string, error) {
	if r.cache != nil {
		addr, ok, err := r.cache.GetAddressForName(ctx, name)
		if err != nil {
			r.logger.WithError(err).WithField("name", name).Warn("name cache lookup failed")
		}
		if ok {
			return addr, nil
		}
	}

	addr, err := r.names.ResolveName(ctx, name)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.SaveAddressForName(ctx, name, addr); err != nil {
			r.logger.WithError(err).WithField("name", name).Warn("failed to cache name")
		}
	}
	return addr, nil
}

func (r *resolver) cachedObservation(ctx context.Context, address string) (security.Observation, bool) {
	if r.cache == nil {
		return security.Observation{}, false
	}
	obs, ok, err := r.cache.GetObservation(ctx, address)
	if err != nil {
		r.logger.WithError(err).WithField("address", address).Warn("observation cache lookup failed")
		return security.Observation{}, false
	}
	return obs, ok
}

// observe queries the chain concurrently. The first failing lookup cancels
// the rest. Reverse name lookup, when requested, is best effort and never
// fails the call.
func (r *resolver) observe(ctx context.Context, address string, reverse bool) (security.Observation, error) {
	var (
		balance    *big.Int
		nonce      uint64
		isContract bool
		firstTx    *time.Time
		ensName    string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = r.chain.Balance(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		nonce, err = r.chain.Nonce(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		isContract, err = r.chain.IsContract(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		firstTx, err = r.history.FirstOutgoingTransaction(gctx, address)
		return err
	})
	if reverse {
		g.Go(func() error {
			n, err := r.names.LookupAddress(gctx, address)
			if err != nil {
				r.logger.WithError(err).WithField("address", address).Debug("reverse name lookup failed")
				return nil
			}
			ensName = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.WithError(err).WithField("address", address).Error("failed to resolve address facts")
		return security.Observation{}, err
	}

	if balance == nil {
		balance = new(big.Int)
	}

	obs := security.Observation{
		Address:                 address,
		BalanceWei:              balance.String(),
		HasOutgoingTransactions: nonce > 0 || firstTx != nil,
		IsSmartContract:         isContract,
		ObservedAt:              r.now().UTC(),
	}
	if ensName != "" {
		obs.EnsName = &ensName
	}
	if firstTx != nil {
		ts := firstTx.Unix()
		obs.FirstTransactionTimestamp = &ts
	}

	r.logger.WithFields(logrus.Fields{
		"address":     address,
		"nonce":       nonce,
		"is_contract": isContract,
		"exposed":     obs.HasOutgoingTransactions,
	}).Debug("resolved address facts")

	return obs, nil
}
