package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeiToEth(t *testing.T) {
	tests := []struct {
		wei     string
		want    float64
		wantErr bool
	}{
		{wei: "0", want: 0},
		{wei: "1000000000000000000", want: 1},
		{wei: "500000000000000", want: 0.0005},
		{wei: "123456789000000000000000", want: 123456.789},
		{wei: "-1", wantErr: true},
		{wei: "1.5", wantErr: true},
		{wei: "abc", wantErr: true},
		{wei: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.wei, func(t *testing.T) {
			got, err := WeiToEth(tt.wei)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBalance)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, 0, DaysSince(now.Unix(), now))
	assert.Equal(t, 0, DaysSince(now.Unix()+3600, now))
	assert.Equal(t, 0, DaysSince(now.Unix()-86399, now))
	assert.Equal(t, 1, DaysSince(now.Unix()-86400, now))
	assert.Equal(t, 400, DaysSince(now.Add(-400*24*time.Hour).Unix(), now))
}

func TestNewAddressFacts(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	first := now.Add(-30 * 24 * time.Hour)
	name := "vitalik.eth"

	facts, err := NewAddressFacts("  0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045 ", &name, "2500000000000000000", false, &first, false, now)
	require.NoError(t, err)

	assert.Equal(t, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", facts.Address)
	assert.Equal(t, 2.5, facts.BalanceEth)
	assert.True(t, facts.HasOutgoingTransactions)
	require.NotNil(t, facts.FirstTransactionTimestamp)
	assert.Equal(t, first.Unix(), *facts.FirstTransactionTimestamp)
	require.NotNil(t, facts.DaysSinceFirstTransaction)
	assert.Equal(t, 30, *facts.DaysSinceFirstTransaction)
	assert.NoError(t, facts.Validate())

	facts, err = NewAddressFacts("0xabc", nil, "0", true, nil, false, now)
	require.NoError(t, err)
	assert.True(t, facts.HasOutgoingTransactions)
	assert.Nil(t, facts.FirstTransactionTimestamp)
	assert.Nil(t, facts.DaysSinceFirstTransaction)

	_, err = NewAddressFacts(" ", nil, "0", false, nil, false, now)
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = NewAddressFacts("0xabc", nil, "lots", false, nil, false, now)
	assert.ErrorIs(t, err, ErrInvalidBalance)
}

func TestAddressFacts_Validate(t *testing.T) {
	ts := int64(1_600_000_000)
	days := 3
	negative := -1

	tests := []struct {
		name  string
		facts AddressFacts
		want  error
	}{
		{
			name:  "minimal",
			facts: AddressFacts{Address: "0xabc"},
		},
		{
			name:  "missing address",
			facts: AddressFacts{},
			want:  ErrMissingAddress,
		},
		{
			name:  "bad wei",
			facts: AddressFacts{Address: "0xabc", BalanceWei: "-5"},
			want:  ErrInvalidBalance,
		},
		{
			name:  "negative eth",
			facts: AddressFacts{Address: "0xabc", BalanceEth: -1},
			want:  ErrNegativeBalanceAmount,
		},
		{
			name:  "timestamp without outgoing",
			facts: AddressFacts{Address: "0xabc", FirstTransactionTimestamp: &ts, DaysSinceFirstTransaction: &days},
			want:  ErrTimestampWithoutTx,
		},
		{
			name:  "days without timestamp",
			facts: AddressFacts{Address: "0xabc", HasOutgoingTransactions: true, DaysSinceFirstTransaction: &days},
			want:  ErrDaysWithoutTimestamp,
		},
		{
			name:  "timestamp without days",
			facts: AddressFacts{Address: "0xabc", HasOutgoingTransactions: true, FirstTransactionTimestamp: &ts},
			want:  ErrTimestampWithoutDays,
		},
		{
			name:  "negative days",
			facts: AddressFacts{Address: "0xabc", HasOutgoingTransactions: true, FirstTransactionTimestamp: &ts, DaysSinceFirstTransaction: &negative},
			want:  ErrNegativeDaysSinceTx,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.facts.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestObservation_Facts(t *testing.T) {
	ts := int64(1_700_000_000)
	obs := Observation{
		Address:                   "0xabc",
		BalanceWei:                "1000000000000000000",
		HasOutgoingTransactions:   true,
		FirstTransactionTimestamp: &ts,
	}

	facts, err := obs.Facts(time.Unix(ts, 0).Add(72 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.0, facts.BalanceEth)
	require.NotNil(t, facts.DaysSinceFirstTransaction)
	assert.Equal(t, 3, *facts.DaysSinceFirstTransaction)
	assert.Equal(t, ts, *facts.FirstTransactionTimestamp)
}
