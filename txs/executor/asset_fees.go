// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	safemath "github.com/luxfi/math"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/txs"
)

func (e *evaluator) FundFeePoolTx(tx *txs.FundFeePoolTx) error {
	funded, err := resolveAsset(e.chain, tx.AssetID)
	if err != nil {
		return err
	}
	dynamic, err := resolveDynamicData(e.chain, funded)
	if err != nil {
		return err
	}
	if err := verifyBalance(e.chain, tx.From, asset.Amount{
		Amount:  tx.Amount,
		AssetID: asset.CoreID,
	}); err != nil {
		return err
	}

	e.ctx.asset = funded
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) FundFeePoolTx(tx *txs.FundFeePoolTx) error {
	if err := a.chain.SubBalance(tx.From, asset.Amount{
		Amount:  tx.Amount,
		AssetID: asset.CoreID,
	}); err != nil {
		return err
	}

	dynamic := a.ctx.dynamic
	newPool, err := safemath.Add(dynamic.FeePool, tx.Amount)
	if err != nil {
		return err
	}
	dynamic.FeePool = newPool
	a.chain.PutDynamicData(dynamic)
	return nil
}

func (e *evaluator) IndirectFundFeePoolTx(tx *txs.IndirectFundFeePoolTx) error {
	funded, err := resolveAsset(e.chain, tx.AssetID)
	if err != nil {
		return err
	}
	dynamic, err := resolveDynamicData(e.chain, funded)
	if err != nil {
		return err
	}

	paying, err := resolveAsset(e.chain, tx.PayingAsset)
	if err != nil {
		return err
	}
	payingDynamic := dynamic
	if tx.PayingAsset != tx.AssetID {
		payingDynamic, err = resolveDynamicData(e.chain, paying)
		if err != nil {
			return err
		}
	}

	if err := verifyBalance(e.chain, tx.From, asset.Amount{
		Amount:  tx.Amount,
		AssetID: tx.PayingAsset,
	}); err != nil {
		return err
	}

	converted, err := asset.Amount{
		Amount:  tx.Amount,
		AssetID: tx.PayingAsset,
	}.Multiply(paying.Options.CoreExchangeRate)
	if err != nil {
		return err
	}
	if converted.AssetID != asset.CoreID {
		return fmt.Errorf("%w: %s", errRateNotCore, paying.Symbol)
	}
	// Liquidity guard on the paying asset's own pool. The pool stays the
	// strictly larger side so later fee conversions in that asset cannot
	// be starved by a single funding.
	if converted.Amount >= payingDynamic.FeePool {
		return fmt.Errorf("%w: %s pool %d conversion %d", errFeePoolLiquidity, paying.Symbol, payingDynamic.FeePool, converted.Amount)
	}

	e.ctx.asset = funded
	e.ctx.dynamic = dynamic
	e.ctx.payingDynamic = payingDynamic
	e.ctx.corePaid = converted.Amount
	return nil
}

func (a *applier) IndirectFundFeePoolTx(tx *txs.IndirectFundFeePoolTx) error {
	if err := a.chain.SubBalance(tx.From, asset.Amount{
		Amount:  tx.Amount,
		AssetID: tx.PayingAsset,
	}); err != nil {
		return err
	}

	paying := a.ctx.payingDynamic
	newFees, err := safemath.Add(paying.AccumulatedFees, tx.Amount)
	if err != nil {
		return err
	}
	newPayingPool, err := safemath.Sub(paying.FeePool, a.ctx.corePaid)
	if err != nil {
		return err
	}
	paying.AccumulatedFees = newFees
	paying.FeePool = newPayingPool

	dynamic := a.ctx.dynamic
	newPool, err := safemath.Add(dynamic.FeePool, a.ctx.corePaid)
	if err != nil {
		return err
	}
	dynamic.FeePool = newPool

	a.chain.PutDynamicData(paying)
	a.chain.PutDynamicData(dynamic)
	return nil
}

func (e *evaluator) ClaimFeesTx(tx *txs.ClaimFeesTx) error {
	if !e.ctx.rules.AllowFeeClaims {
		return errFeeClaimsNotEnabled
	}

	claimed, err := resolveAsset(e.chain, tx.AmountToClaim.AssetID)
	if err != nil {
		return err
	}
	if err := verifyIssuer(claimed, tx.Issuer); err != nil {
		return err
	}
	dynamic, err := resolveDynamicData(e.chain, claimed)
	if err != nil {
		return err
	}
	if tx.AmountToClaim.Amount > dynamic.AccumulatedFees {
		return fmt.Errorf("%w: accumulated %d claim %d", errClaimExceedsAccumulated, dynamic.AccumulatedFees, tx.AmountToClaim.Amount)
	}

	e.ctx.asset = claimed
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) ClaimFeesTx(tx *txs.ClaimFeesTx) error {
	dynamic := a.ctx.dynamic
	newFees, err := safemath.Sub(dynamic.AccumulatedFees, tx.AmountToClaim.Amount)
	if err != nil {
		return err
	}
	dynamic.AccumulatedFees = newFees
	a.chain.PutDynamicData(dynamic)

	return a.chain.AddBalance(tx.Issuer, tx.AmountToClaim)
}
