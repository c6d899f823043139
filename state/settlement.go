// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"bytes"

	"github.com/google/btree"
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

var (
	_ btree.LessFunc[*ForceSettlement] = (*ForceSettlement).Less
	_ btree.LessFunc[*CallOrder]       = (*CallOrder).Less
)

// ForceSettlement is a pending holder-initiated settlement, created when a
// holder force-settles an asset that has not been globally settled. It is
// consumed by the maturity sweep once its date passes, or cancelled when the
// issuer disables force settlement.
type ForceSettlement struct {
	ID      ids.ID       `serialize:"true" json:"id"`
	Owner   ids.ShortID  `serialize:"true" json:"owner"`
	Balance asset.Amount `serialize:"true" json:"balance"`
	// Unix time at which the request matures.
	SettlementDate uint64 `serialize:"true" json:"settlementDate"`
}

// A *ForceSettlement is ordered by settling asset, then by maturity, then by
// ID. Grouping by asset first makes "all pending settlements of one asset" a
// contiguous range of the tree.
func (f *ForceSettlement) Less(than *ForceSettlement) bool {
	if c := bytes.Compare(f.Balance.AssetID[:], than.Balance.AssetID[:]); c != 0 {
		return c < 0
	}
	if f.SettlementDate != than.SettlementDate {
		return f.SettlementDate < than.SettlementDate
	}
	return bytes.Compare(f.ID[:], than.ID[:]) < 0
}

// CallOrder is an open short position: debt in a market-issued asset against
// collateral in its backing asset. The matching engine owns these objects;
// this core only reads them to bound global-settlement prices.
type CallOrder struct {
	ID         ids.ID       `serialize:"true" json:"id"`
	Borrower   ids.ShortID  `serialize:"true" json:"borrower"`
	Collateral asset.Amount `serialize:"true" json:"collateral"`
	Debt       asset.Amount `serialize:"true" json:"debt"`
}

// A *CallOrder is ordered by debt asset, then by collateral-to-debt ratio
// ascending, so the least collateralized position of an asset is the first
// element of its range. Ratios compare by cross multiplication in 256-bit
// space; ties break by ID.
func (c *CallOrder) Less(than *CallOrder) bool {
	if cmp := bytes.Compare(c.Debt.AssetID[:], than.Debt.AssetID[:]); cmp != 0 {
		return cmp < 0
	}
	l := new(uint256.Int).Mul(
		uint256.NewInt(c.Collateral.Amount),
		uint256.NewInt(than.Debt.Amount),
	)
	r := new(uint256.Int).Mul(
		uint256.NewInt(than.Collateral.Amount),
		uint256.NewInt(c.Debt.Amount),
	)
	if cmp := l.Cmp(r); cmp != 0 {
		return cmp < 0
	}
	return bytes.Compare(c.ID[:], than.ID[:]) < 0
}
