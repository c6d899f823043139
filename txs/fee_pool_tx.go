// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

var (
	_ UnsignedTx = (*FundFeePoolTx)(nil)
	_ UnsignedTx = (*IndirectFundFeePoolTx)(nil)
	_ UnsignedTx = (*ClaimFeesTx)(nil)

	errCorePayingAsset = errors.New("indirect funding must pay in a non-core asset")
)

// FundFeePoolTx credits an asset's fee pool with core currency paid by the
// funder.
type FundFeePoolTx struct {
	From    ids.ShortID `serialize:"true" json:"from"`
	AssetID ids.ID      `serialize:"true" json:"assetID"`
	// Amount of core currency to deposit.
	Amount uint64 `serialize:"true" json:"amount"`
}

func (tx *FundFeePoolTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *FundFeePoolTx) Visit(visitor Visitor) error {
	return visitor.FundFeePoolTx(tx)
}

// IndirectFundFeePoolTx funds an asset's fee pool with a payment in a
// second currency, converted to core through that currency's own exchange
// rate and drawn against that currency's fee pool liquidity.
type IndirectFundFeePoolTx struct {
	From    ids.ShortID `serialize:"true" json:"from"`
	AssetID ids.ID      `serialize:"true" json:"assetID"`
	// Currency the funder pays in.
	PayingAsset ids.ID `serialize:"true" json:"payingAsset"`
	// Amount of the paying currency to convert.
	Amount uint64 `serialize:"true" json:"amount"`
}

func (tx *IndirectFundFeePoolTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.Amount == 0:
		return errZeroAmount
	case tx.PayingAsset == asset.CoreID:
		return errCorePayingAsset
	}
	return nil
}

func (tx *IndirectFundFeePoolTx) Visit(visitor Visitor) error {
	return visitor.IndirectFundFeePoolTx(tx)
}

// ClaimFeesTx moves accumulated fees of an asset to its issuer's balance.
type ClaimFeesTx struct {
	Issuer        ids.ShortID  `serialize:"true" json:"issuer"`
	AmountToClaim asset.Amount `serialize:"true" json:"amountToClaim"`
}

func (tx *ClaimFeesTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.AmountToClaim.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *ClaimFeesTx) Visit(visitor Visitor) error {
	return visitor.ClaimFeesTx(tx)
}
