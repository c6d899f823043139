// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/log"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/config"
	"github.com/luxfi/assetvm/state"
)

type Backend struct {
	Config *config.Config
	Margin MarginEngine
	Log    log.Logger
}

// MarginEngine is the collateral matching engine consumed by this core. It
// owns call orders; the executors only notify it.
type MarginEngine interface {
	// CheckCallOrders re-evaluates the open positions of [a] after its
	// median feed moved.
	CheckCallOrders(chain state.Chain, a *state.Asset) error

	// GloballySettleAsset freezes [a] in the settled state at [price] and
	// establishes a settlement fund covering all outstanding debt.
	GloballySettleAsset(chain state.Chain, a *state.Asset, price asset.Price) error
}
