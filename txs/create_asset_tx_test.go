// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/assetvm/components/asset"
)

func validCreateAssetTx() *CreateAssetTx {
	return &CreateAssetTx{
		Symbol:    "GOLD",
		Precision: 4,
		Options: asset.Options{
			MaxSupply:   1_000_000,
			Permissions: asset.UIAPermissionMask,
		},
	}
}

func TestCreateAssetTxSyntacticVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateAssetTx)
		err    error
	}{
		{
			name:   "valid",
			mutate: func(*CreateAssetTx) {},
		},
		{
			name:   "subasset symbol",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "GOLD.COIN" },
		},
		{
			name:   "symbol too short",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "AB" },
			err:    errSymbolLen,
		},
		{
			name:   "symbol too long",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "ABCDEFGHIJKLMNOPQ" },
			err:    errSymbolLen,
		},
		{
			name:   "lowercase symbol",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "gold" },
			err:    errIllegalSymbol,
		},
		{
			name:   "leading dot",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = ".GOLD" },
			err:    errIllegalSymbol,
		},
		{
			name:   "trailing dot",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "GOLD." },
			err:    errIllegalSymbol,
		},
		{
			name:   "consecutive dots",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "GOLD..X" },
			err:    errIllegalSymbol,
		},
		{
			name:   "leading digit",
			mutate: func(tx *CreateAssetTx) { tx.Symbol = "1GOLD" },
			err:    errIllegalSymbol,
		},
		{
			name:   "zero max supply",
			mutate: func(tx *CreateAssetTx) { tx.Options.MaxSupply = 0 },
			err:    errMaxSupplyZero,
		},
		{
			name:   "auto-fill tag out of range",
			mutate: func(tx *CreateAssetTx) { tx.RateAutoFill = AutoFillQuote + 1 },
			err:    errInvalidAutoFill,
		},
		{
			name:   "prediction market without bitasset options",
			mutate: func(tx *CreateAssetTx) { tx.IsPredictionMarket = true },
			err:    errMissingBitassetOpts,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validCreateAssetTx()
			tt.mutate(tx)
			require.ErrorIs(t, tx.SyntacticVerify(), tt.err)
		})
	}
}

func TestCreateAssetTxVerifiesNestedOptions(t *testing.T) {
	require := require.New(t)

	tx := validCreateAssetTx()
	tx.Options.Flags = asset.GlobalSettle
	require.Error(tx.SyntacticVerify())

	tx = validCreateAssetTx()
	tx.BitassetOptions = &asset.BitassetOptions{}
	require.Error(tx.SyntacticVerify())
}

func TestNilTxSyntacticVerify(t *testing.T) {
	require := require.New(t)

	require.ErrorIs((*CreateAssetTx)(nil).SyntacticVerify(), ErrNilTx)
	require.ErrorIs((*IssueTx)(nil).SyntacticVerify(), ErrNilTx)
	require.ErrorIs((*SettleTx)(nil).SyntacticVerify(), ErrNilTx)
	require.ErrorIs((*AllowCreateAssetTx)(nil).SyntacticVerify(), ErrNilTx)
}

func TestZeroAmountsRejected(t *testing.T) {
	require := require.New(t)

	require.ErrorIs((&IssueTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&ReferralIssueTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&DailyIssueTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&ReserveTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&FundFeePoolTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&IndirectFundFeePoolTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&ClaimFeesTx{}).SyntacticVerify(), errZeroAmount)
	require.ErrorIs((&SettleTx{}).SyntacticVerify(), errZeroAmount)
}
