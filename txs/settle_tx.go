// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

var (
	_ UnsignedTx = (*PublishFeedTx)(nil)
	_ UnsignedTx = (*GlobalSettleTx)(nil)
	_ UnsignedTx = (*SettleTx)(nil)
)

// PublishFeedTx records one producer's price submission for a market-issued
// asset.
type PublishFeedTx struct {
	Publisher ids.ShortID     `serialize:"true" json:"publisher"`
	AssetID   ids.ID          `serialize:"true" json:"assetID"`
	Feed      asset.PriceFeed `serialize:"true" json:"feed"`
}

func (tx *PublishFeedTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.Feed.SettlementPrice.Verify()
}

func (tx *PublishFeedTx) Visit(visitor Visitor) error {
	return visitor.PublishFeedTx(tx)
}

// GlobalSettleTx converts every holder of a market-issued asset to backing
// collateral at one issuer-proposed price.
type GlobalSettleTx struct {
	Issuer      ids.ShortID `serialize:"true" json:"issuer"`
	AssetID     ids.ID      `serialize:"true" json:"assetID"`
	SettlePrice asset.Price `serialize:"true" json:"settlePrice"`
}

func (tx *GlobalSettleTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.SettlePrice.Verify()
}

func (tx *GlobalSettleTx) Visit(visitor Visitor) error {
	return visitor.GlobalSettleTx(tx)
}

// SettleTx is a holder's request to convert market-issued units to backing
// collateral: immediate if the asset is globally settled, otherwise a
// delayed claim.
type SettleTx struct {
	Account ids.ShortID  `serialize:"true" json:"account"`
	Amount  asset.Amount `serialize:"true" json:"amount"`
}

func (tx *SettleTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.Amount.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *SettleTx) Visit(visitor Visitor) error {
	return visitor.SettleTx(tx)
}
