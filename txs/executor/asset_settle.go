// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

func (e *evaluator) GlobalSettleTx(tx *txs.GlobalSettleTx) error {
	settled, err := resolveAsset(e.chain, tx.AssetID)
	if err != nil {
		return err
	}
	bitasset, err := resolveBitassetData(e.chain, settled)
	if err != nil {
		return err
	}
	if bitasset.HasSettlement() {
		return fmt.Errorf("%w: %s", errAlreadySettled, settled.Symbol)
	}
	if !settled.CanGlobalSettle() {
		return fmt.Errorf("%w: %s", errGlobalSettleForbidden, settled.Symbol)
	}
	if err := verifyIssuer(settled, tx.Issuer); err != nil {
		return err
	}

	dynamic, err := resolveDynamicData(e.chain, settled)
	if err != nil {
		return err
	}
	if dynamic.CurrentSupply == 0 {
		return fmt.Errorf("%w: %s", errNoSupply, settled.Symbol)
	}

	price := tx.SettlePrice
	if price.BaseAsset != settled.ID || price.QuoteAsset != bitasset.Options.BackingAsset {
		return fmt.Errorf("%w: %s settles against %s", errWrongFeedQuote, settled.Symbol, bitasset.Options.BackingAsset)
	}

	// The proposed price is bounded by the least collateralized short: its
	// collateral must still cover its debt at that price, otherwise
	// settlement would strand the position.
	weakest, ok := e.chain.LeastCollateralized(settled.ID)
	if !ok {
		return fmt.Errorf("%w: %s", errNoOpenPositions, settled.Symbol)
	}
	debtValue, err := weakest.Debt.Multiply(price)
	if err != nil {
		return err
	}
	if debtValue.Amount > weakest.Collateral.Amount {
		return fmt.Errorf("%w: debt %d collateral %d", errUndercollateralized, debtValue.Amount, weakest.Collateral.Amount)
	}

	e.ctx.asset = settled
	e.ctx.bitasset = bitasset
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) GlobalSettleTx(tx *txs.GlobalSettleTx) error {
	a.backend.Log.Info("globally settling asset",
		log.String("symbol", a.ctx.asset.Symbol),
		log.Reflect("price", tx.SettlePrice),
	)
	return a.backend.Margin.GloballySettleAsset(a.chain, a.ctx.asset, tx.SettlePrice)
}

func (e *evaluator) SettleTx(tx *txs.SettleTx) error {
	settled, err := resolveAsset(e.chain, tx.Amount.AssetID)
	if err != nil {
		return err
	}
	bitasset, err := resolveBitassetData(e.chain, settled)
	if err != nil {
		return err
	}
	if !settled.CanForceSettle() && !bitasset.HasSettlement() {
		return fmt.Errorf("%w: %s", errForceSettleForbidden, settled.Symbol)
	}
	if bitasset.IsPredictionMarket && !bitasset.HasSettlement() {
		return fmt.Errorf("%w: %s", errPredictionNotSettled, settled.Symbol)
	}
	if !bitasset.HasSettlement() && bitasset.CurrentFeed.SettlementPrice.IsNull() {
		return fmt.Errorf("%w: %s", errInsufficientFeeds, settled.Symbol)
	}
	if err := verifyBalance(e.chain, tx.Account, tx.Amount); err != nil {
		return err
	}

	dynamic, err := resolveDynamicData(e.chain, settled)
	if err != nil {
		return err
	}

	if bitasset.HasSettlement() {
		converted, err := tx.Amount.Multiply(bitasset.SettlementPrice)
		if err != nil {
			return err
		}
		if converted.Amount > bitasset.SettlementFund {
			return fmt.Errorf("%w: %s fund %d payout %d", errSettlementFundExhausted, settled.Symbol, bitasset.SettlementFund, converted.Amount)
		}
		e.ctx.settled = converted
	}

	e.ctx.asset = settled
	e.ctx.bitasset = bitasset
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) SettleTx(tx *txs.SettleTx) error {
	if err := a.chain.SubBalance(tx.Account, tx.Amount); err != nil {
		return err
	}

	bitasset := a.ctx.bitasset
	if bitasset.HasSettlement() {
		// Immediate conversion at the frozen settlement price, drawn from
		// the settlement fund. Evaluation bounded the payout; running dry
		// here means the fund accounting itself is broken.
		payout := a.ctx.settled
		fund, err := safemath.Sub(bitasset.SettlementFund, payout.Amount)
		if err != nil {
			return fmt.Errorf("%w: %s", errSettlementFundExhausted, a.ctx.asset.Symbol)
		}
		bitasset.SettlementFund = fund
		a.chain.PutBitassetData(bitasset)

		if payout.Amount > 0 {
			if err := a.chain.AddBalance(tx.Account, payout); err != nil {
				return err
			}
		}

		dynamic := a.ctx.dynamic
		supply, err := safemath.Sub(dynamic.CurrentSupply, tx.Amount.Amount)
		if err != nil {
			return err
		}
		dynamic.CurrentSupply = supply
		a.chain.PutDynamicData(dynamic)

		a.ctx.outcome.SettledAmount = &payout
		return nil
	}

	// Not yet settled: park the balance in a pending request matured by
	// the periodic sweep at the then-current median.
	pending := &state.ForceSettlement{
		ID:             a.chain.NewObjectID(),
		Owner:          tx.Account,
		Balance:        tx.Amount,
		SettlementDate: uint64(a.ctx.now.Add(bitasset.Options.ForceSettlementDelay()).Unix()),
	}
	a.chain.AddSettlement(pending)
	a.ctx.outcome.SettlementID = pending.ID
	return nil
}
