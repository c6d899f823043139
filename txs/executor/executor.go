// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/config"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

var (
	_ txs.Visitor = (*evaluator)(nil)
	_ txs.Visitor = (*applier)(nil)
)

// Outcome reports the effect values of a committed operation. Most
// operations produce none; creation returns the new asset's identifier and
// force settlement returns either an immediate payout or a pending request,
// never both.
type Outcome struct {
	// Identifier of the asset created by a CreateAssetTx.
	AssetID ids.ID

	// Backing-currency amount paid out by a SettleTx against a globally
	// settled asset. Nil if the settlement went pending instead.
	SettledAmount *asset.Amount

	// Identifier of the pending request created by a SettleTx against an
	// asset that has not globally settled.
	SettlementID ids.ID
}

// opContext carries intermediate results from the evaluate pass to the
// apply pass, so both passes observe the same resolved objects and apply
// never repeats a lookup evaluate already performed.
type opContext struct {
	now   time.Time
	rules config.Rules

	asset    *state.Asset
	dynamic  *state.AssetDynamicData
	bitasset *state.BitassetData
	caller   *state.Account

	// Asset creation: core fee charged to the creator and the half of it
	// rebated into the new asset's fee pool.
	fee    uint64
	rebate uint64

	// Indirect fee-pool funding: the currency the funder pays in and the
	// core-currency value of that payment.
	payingDynamic *state.AssetDynamicData
	corePaid      uint64

	// Force settlement against a settled asset: the backing-currency
	// payout computed at the fixed settlement price.
	settled asset.Amount

	outcome Outcome
}

type evaluator struct {
	backend *Backend
	chain   state.Chain
	ctx     *opContext
}

type applier struct {
	backend *Backend
	chain   state.Chain
	ctx     *opContext
}

// Evaluate runs the read-only validation pass of [tx] against [chain]. A nil
// error means the operation would currently commit; no state is mutated
// either way.
func Evaluate(backend *Backend, chain state.Chain, tx txs.UnsignedTx) error {
	_, err := evaluate(backend, chain, tx)
	return err
}

// Execute runs the full evaluate-then-apply cycle of [tx] against [chain].
// An error wrapping ErrPrecondition or ErrReference was raised before any
// mutation; an error wrapping ErrConflict means apply failed partway, and
// the caller must discard all uncommitted state.
func Execute(backend *Backend, chain state.Chain, tx txs.UnsignedTx) (*Outcome, error) {
	ctx, err := evaluate(backend, chain, tx)
	if err != nil {
		return nil, err
	}

	err = tx.Visit(&applier{
		backend: backend,
		chain:   chain,
		ctx:     ctx,
	})
	switch {
	case err == nil:
		return &ctx.outcome, nil
	case errors.Is(err, ErrConflict):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
}

func evaluate(backend *Backend, chain state.Chain, tx txs.UnsignedTx) (*opContext, error) {
	if err := tx.SyntacticVerify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	now := chain.GetTimestamp()
	ctx := &opContext{
		now:   now,
		rules: backend.Config.RulesAt(now),
	}
	err := tx.Visit(&evaluator{
		backend: backend,
		chain:   chain,
		ctx:     ctx,
	})
	switch {
	case err == nil:
		return ctx, nil
	case errors.Is(err, ErrPrecondition), errors.Is(err, ErrReference):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
}
