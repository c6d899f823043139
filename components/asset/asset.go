// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// CoreID is the identifier of the core (base) currency of the network.
var CoreID = ids.Empty

var (
	ErrZeroPriceAmount    = errors.New("price amount must be positive")
	ErrSamePriceAssets    = errors.New("price base and quote assets must differ")
	ErrPriceAssetMismatch = errors.New("amount asset is neither side of the price")
)

// Amount is a quantity of one asset.
type Amount struct {
	Amount  uint64 `serialize:"true" json:"amount"`
	AssetID ids.ID `serialize:"true" json:"assetID"`
}

// Price is the exchange rate between two assets, expressed as the ratio
// BaseAmount : QuoteAmount.
type Price struct {
	BaseAmount  uint64 `serialize:"true" json:"baseAmount"`
	BaseAsset   ids.ID `serialize:"true" json:"baseAsset"`
	QuoteAmount uint64 `serialize:"true" json:"quoteAmount"`
	QuoteAsset  ids.ID `serialize:"true" json:"quoteAsset"`
}

// IsNull reports whether p is the unset price.
func (p Price) IsNull() bool {
	return p.BaseAmount == 0 && p.QuoteAmount == 0
}

func (p Price) Verify() error {
	switch {
	case p.BaseAmount == 0 || p.QuoteAmount == 0:
		return ErrZeroPriceAmount
	case p.BaseAsset == p.QuoteAsset:
		return ErrSamePriceAssets
	}
	return nil
}

// Cmp compares the ratios of two prices over the same asset pair by cross
// multiplication in 256-bit space, so no overflow is possible. This is the
// total order used for median selection: every node must agree on it.
func (p Price) Cmp(o Price) int {
	l := new(uint256.Int).Mul(
		uint256.NewInt(p.BaseAmount),
		uint256.NewInt(o.QuoteAmount),
	)
	r := new(uint256.Int).Mul(
		uint256.NewInt(o.BaseAmount),
		uint256.NewInt(p.QuoteAmount),
	)
	return l.Cmp(r)
}

// Less reports whether p's ratio is strictly below o's.
func (p Price) Less(o Price) bool {
	return p.Cmp(o) < 0
}

// Multiply converts [a] through the price. An amount in the base asset
// converts to the quote asset and vice versa. The result is truncated.
func (a Amount) Multiply(p Price) (Amount, error) {
	if err := p.Verify(); err != nil {
		return Amount{}, err
	}

	var numerator, denominator uint64
	var resultAsset ids.ID
	switch a.AssetID {
	case p.BaseAsset:
		numerator, denominator = p.QuoteAmount, p.BaseAmount
		resultAsset = p.QuoteAsset
	case p.QuoteAsset:
		numerator, denominator = p.BaseAmount, p.QuoteAmount
		resultAsset = p.BaseAsset
	default:
		return Amount{}, fmt.Errorf("%w: %s", ErrPriceAssetMismatch, a.AssetID)
	}

	product := new(uint256.Int).Mul(
		uint256.NewInt(a.Amount),
		uint256.NewInt(numerator),
	)
	product.Div(product, uint256.NewInt(denominator))
	if !product.IsUint64() {
		return Amount{}, fmt.Errorf("amount overflow converting %d units of %s", a.Amount, a.AssetID)
	}
	return Amount{
		Amount:  product.Uint64(),
		AssetID: resultAsset,
	}, nil
}

// PriceFeed is one price submission, or the aggregated consensus of many.
type PriceFeed struct {
	// Price at which holders settle against backing collateral. The base
	// asset is the bitasset, the quote asset is its backing asset.
	SettlementPrice Price `serialize:"true" json:"settlementPrice"`

	// Rate used to subsidize fees paid in the asset.
	CoreExchangeRate Price `serialize:"true" json:"coreExchangeRate"`
}

func (f PriceFeed) Equal(o PriceFeed) bool {
	return f.SettlementPrice == o.SettlementPrice &&
		f.CoreExchangeRate == o.CoreExchangeRate
}
