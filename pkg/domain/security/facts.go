package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const secondsPerDay = 86400

var weiPerEth = decimal.New(1, 18)

var (
	ErrMissingAddress        = errors.New("address is required")
	ErrInvalidBalance        = errors.New("balanceWei must be a non-negative integer")
	ErrTimestampWithoutTx    = errors.New("firstTransactionTimestamp requires hasOutgoingTransactions")
	ErrDaysWithoutTimestamp  = errors.New("daysSinceFirstTransaction requires firstTransactionTimestamp")
	ErrNegativeDaysSinceTx   = errors.New("daysSinceFirstTransaction must be non-negative")
	ErrTimestampWithoutDays  = errors.New("firstTransactionTimestamp requires daysSinceFirstTransaction")
	ErrNegativeBalanceAmount = errors.New("balanceEth must be non-negative")
)

// AddressFacts is the resolved on-chain view of a single address.
// DaysSinceFirstTransaction is set iff FirstTransactionTimestamp is set, which
// is only set when HasOutgoingTransactions is true.
type AddressFacts struct {
	Address                   string  `json:"address"`
	EnsName                   *string `json:"ensName,omitempty"`
	BalanceWei                string  `json:"balanceWei"`
	BalanceEth                float64 `json:"balanceEth"`
	HasOutgoingTransactions   bool    `json:"hasOutgoingTransactions"`
	FirstTransactionTimestamp *int64  `json:"firstTransactionTimestamp,omitempty"`
	DaysSinceFirstTransaction *int    `json:"daysSinceFirstTransaction,omitempty"`
	IsSmartContract           bool    `json:"isSmartContract"`
}

// NewAddressFacts builds facts from raw chain observations. firstTx is only
// honoured when it is non-nil; a non-nil firstTx implies outgoing activity.
func NewAddressFacts(
	address string,
	ensName *string,
	balanceWei string,
	hasOutgoing bool,
	firstTx *time.Time,
	isContract bool,
	now time.Time,
) (AddressFacts, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return AddressFacts{}, ErrMissingAddress
	}

	balanceEth, err := WeiToEth(balanceWei)
	if err != nil {
		return AddressFacts{}, err
	}

	facts := AddressFacts{
		Address:                 address,
		EnsName:                 ensName,
		BalanceWei:              balanceWei,
		BalanceEth:              balanceEth,
		HasOutgoingTransactions: hasOutgoing || firstTx != nil,
		IsSmartContract:         isContract,
	}

	if firstTx != nil {
		ts := firstTx.Unix()
		days := DaysSince(ts, now)
		facts.FirstTransactionTimestamp = &ts
		facts.DaysSinceFirstTransaction = &days
	}

	return facts, nil
}

// WeiToEth converts a base-10 wei amount into ether. The division happens in
// decimal space so only the final float conversion rounds.
func WeiToEth(balanceWei string) (float64, error) {
	wei, err := decimal.NewFromString(strings.TrimSpace(balanceWei))
	if err != nil || !wei.IsInteger() || wei.IsNegative() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBalance, balanceWei)
	}
	eth, _ := wei.Div(weiPerEth).Float64()
	return eth, nil
}

// DaysSince returns whole days elapsed between ts and now, never negative.
func DaysSince(ts int64, now time.Time) int {
	elapsed := now.Unix() - ts
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / secondsPerDay)
}

// Validate checks the structural invariants of facts supplied by a caller.
func (f AddressFacts) Validate() error {
	if strings.TrimSpace(f.Address) == "" {
		return ErrMissingAddress
	}
	if f.BalanceWei != "" {
		if _, err := WeiToEth(f.BalanceWei); err != nil {
			return err
		}
	}
	if f.BalanceEth < 0 {
		return ErrNegativeBalanceAmount
	}
	if f.FirstTransactionTimestamp != nil && !f.HasOutgoingTransactions {
		return ErrTimestampWithoutTx
	}
	if f.DaysSinceFirstTransaction != nil {
		if f.FirstTransactionTimestamp == nil {
			return ErrDaysWithoutTimestamp
		}
		if *f.DaysSinceFirstTransaction < 0 {
			return ErrNegativeDaysSinceTx
		}
	}
	if f.FirstTransactionTimestamp != nil && f.DaysSinceFirstTransaction == nil {
		return ErrTimestampWithoutDays
	}
	return nil
}
