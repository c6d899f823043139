// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

var (
	_ UnsignedTx = (*UpdateAssetTx)(nil)
	_ UnsignedTx = (*UpdateAssetV2Tx)(nil)
	_ UnsignedTx = (*UpdateBitassetTx)(nil)
	_ UnsignedTx = (*UpdateFeedProducersTx)(nil)
)

// UpdateAssetTx is the first-generation option update: it may change the
// issuer and the option bundle, but not the issuer parameters.
type UpdateAssetTx struct {
	Issuer  ids.ShortID `serialize:"true" json:"issuer"`
	AssetID ids.ID      `serialize:"true" json:"assetID"`

	// Nil leaves the issuer unchanged.
	NewIssuer  *ids.ShortID  `serialize:"true" json:"newIssuer"`
	NewOptions asset.Options `serialize:"true" json:"newOptions"`
}

func (tx *UpdateAssetTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.NewOptions.Verify()
}

func (tx *UpdateAssetTx) Visit(visitor Visitor) error {
	return visitor.UpdateAssetTx(tx)
}

// UpdateAssetV2Tx is the second-generation option update. It additionally
// replaces the issuer parameters and is unconditionally capability-gated.
type UpdateAssetV2Tx struct {
	Issuer  ids.ShortID `serialize:"true" json:"issuer"`
	AssetID ids.ID      `serialize:"true" json:"assetID"`

	NewIssuer  *ids.ShortID  `serialize:"true" json:"newIssuer"`
	NewOptions asset.Options `serialize:"true" json:"newOptions"`
	NewParams  asset.Params  `serialize:"true" json:"newParams"`
}

func (tx *UpdateAssetV2Tx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.NewOptions.Verify()
}

func (tx *UpdateAssetV2Tx) Visit(visitor Visitor) error {
	return visitor.UpdateAssetV2Tx(tx)
}

// UpdateBitassetTx replaces the bitasset options of a market-issued asset.
type UpdateBitassetTx struct {
	Issuer  ids.ShortID `serialize:"true" json:"issuer"`
	AssetID ids.ID      `serialize:"true" json:"assetID"`

	NewOptions asset.BitassetOptions `serialize:"true" json:"newOptions"`
}

func (tx *UpdateBitassetTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.NewOptions.Verify()
}

func (tx *UpdateBitassetTx) Visit(visitor Visitor) error {
	return visitor.UpdateBitassetTx(tx)
}

// UpdateFeedProducersTx replaces the explicit feed-producer set of a
// market-issued asset.
type UpdateFeedProducersTx struct {
	Issuer  ids.ShortID `serialize:"true" json:"issuer"`
	AssetID ids.ID      `serialize:"true" json:"assetID"`

	// Sorted and unique.
	NewFeedProducers []ids.ShortID `serialize:"true" json:"newFeedProducers"`
}

func (tx *UpdateFeedProducersTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *UpdateFeedProducersTx) Visit(visitor Visitor) error {
	return visitor.UpdateFeedProducersTx(tx)
}
