package security

import "time"

// Observation is what the chain reported for an address at ObservedAt.
// Unlike AddressFacts it carries no derived values, so it can be cached and
// turned into facts later without going stale.
type Observation struct {
	Address                   string    `json:"address"`
	EnsName                   *string   `json:"ensName,omitempty"`
	BalanceWei                string    `json:"balanceWei"`
	HasOutgoingTransactions   bool      `json:"hasOutgoingTransactions"`
	FirstTransactionTimestamp *int64    `json:"firstTransactionTimestamp,omitempty"`
	IsSmartContract           bool      `json:"isSmartContract"`
	ObservedAt                time.Time `json:"observedAt"`
}

// Facts derives AddressFacts as of now.
func (o Observation) Facts(now time.Time) (AddressFacts, error) {
	var firstTx *time.Time
	if o.FirstTransactionTimestamp != nil {
		ts := time.Unix(*o.FirstTransactionTimestamp, 0)
		firstTx = &ts
	}
	return NewAddressFacts(
		o.Address,
		o.EnsName,
		o.BalanceWei,
		o.HasOutgoingTransactions,
		firstTx,
		o.IsSmartContract,
		now,
	)
}
