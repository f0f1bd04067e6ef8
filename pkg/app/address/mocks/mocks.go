package mocks

import (
	"context"
	"math/big"
	"time"

	"github.com/qscore-labs/qscore/pkg/domain/security"
	"github.com/stretchr/testify/mock"
)

type ChainReader struct {
	mock.Mock
}

func (m *ChainReader) Balance(ctx context.Context, address string) (*big.Int, error) {
	args := m.Called(ctx, address)
	balance, _ := args.Get(0).(*big.Int)
	return balance, args.Error(1)
}

func (m *ChainReader) Nonce(ctx context.Context, address string) (uint64, error) {
	args := m.Called(ctx, address)
	nonce, _ := args.Get(0).(uint64)
	return nonce, args.Error(1)
}

func (m *ChainReader) IsContract(ctx context.Context, address string) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

type NameResolver struct {
	mock.Mock
}

func (m *NameResolver) ResolveName(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *NameResolver) LookupAddress(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

type TxHistory struct {
	mock.Mock
}

func (m *TxHistory) FirstOutgoingTransaction(ctx context.Context, address string) (*time.Time, error) {
	args := m.Called(ctx, address)
	ts, _ := args.Get(0).(*time.Time)
	return ts, args.Error(1)
}

type FactCache struct {
	mock.Mock
}

func (m *FactCache) GetObservation(ctx context.Context, address string) (security.Observation, bool, error) {
	args := m.Called(ctx, address)
	obs, _ := args.Get(0).(security.Observation)
	return obs, args.Bool(1), args.Error(2)
}

func (m *FactCache) SaveObservation(ctx context.Context, obs security.Observation) error {
	return m.Called(ctx, obs).Error(0)
}

func (m *FactCache) GetAddressForName(ctx context.Context, name string) (string, bool, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *FactCache) SaveAddressForName(ctx context.Context, name, address string) error {
	return m.Called(ctx, name, address).Error(0)
}

type Resolver struct {
	mock.Mock
}

func (m *Resolver) Resolve(ctx context.Context, input string) (security.AddressFacts, error) {
	args := m.Called(ctx, input)
	facts, _ := args.Get(0).(security.AddressFacts)
	return facts, args.Error(1)
}
