// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	"github.com/luxfi/ids"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/txs"
)

// The four issuance kinds are wire-distinct but share one contract; bonus
// alone is a retained no-op.

func (e *evaluator) IssueTx(tx *txs.IssueTx) error {
	return e.verifyIssuance(tx.Issuer, tx.To, tx.Amount)
}

func (a *applier) IssueTx(tx *txs.IssueTx) error {
	return a.applyIssuance(tx.To, tx.Amount)
}

func (e *evaluator) BonusTx(*txs.BonusTx) error {
	return nil
}

func (a *applier) BonusTx(*txs.BonusTx) error {
	return nil
}

func (e *evaluator) ReferralIssueTx(tx *txs.ReferralIssueTx) error {
	return e.verifyIssuance(tx.Issuer, tx.To, tx.Amount)
}

func (a *applier) ReferralIssueTx(tx *txs.ReferralIssueTx) error {
	return a.applyIssuance(tx.To, tx.Amount)
}

func (e *evaluator) DailyIssueTx(tx *txs.DailyIssueTx) error {
	return e.verifyIssuance(tx.Issuer, tx.To, tx.Amount)
}

func (a *applier) DailyIssueTx(tx *txs.DailyIssueTx) error {
	return a.applyIssuance(tx.To, tx.Amount)
}

func (e *evaluator) verifyIssuance(issuer ids.ShortID, to ids.ShortID, amount asset.Amount) error {
	issued, err := resolveAsset(e.chain, amount.AssetID)
	if err != nil {
		return err
	}
	if err := verifyIssuer(issued, issuer); err != nil {
		return err
	}
	if issued.IsMarketIssued() {
		return fmt.Errorf("%w: %s", errMarketIssued, issued.Symbol)
	}
	if _, err := e.verifyReceiver(issued, to); err != nil {
		return err
	}

	dynamic, err := resolveDynamicData(e.chain, issued)
	if err != nil {
		return err
	}
	newSupply, err := safemath.Add(dynamic.CurrentSupply, amount.Amount)
	if err != nil || newSupply > issued.Options.MaxSupply {
		return fmt.Errorf("%w: supply %d + %d over %d", errExceedsMaxSupply, dynamic.CurrentSupply, amount.Amount, issued.Options.MaxSupply)
	}

	e.ctx.asset = issued
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) applyIssuance(to ids.ShortID, amount asset.Amount) error {
	if err := a.chain.AddBalance(to, amount); err != nil {
		return err
	}

	dynamic := a.ctx.dynamic
	newSupply, err := safemath.Add(dynamic.CurrentSupply, amount.Amount)
	if err != nil {
		return err
	}
	dynamic.CurrentSupply = newSupply
	a.chain.PutDynamicData(dynamic)
	return nil
}

func (e *evaluator) ReserveTx(tx *txs.ReserveTx) error {
	reserved, err := resolveAsset(e.chain, tx.AmountToReserve.AssetID)
	if err != nil {
		return err
	}
	if reserved.IsMarketIssued() {
		return fmt.Errorf("%w: %s", errMarketIssued, reserved.Symbol)
	}
	if _, err := e.verifyPayer(reserved, tx.Payer); err != nil {
		return err
	}
	if err := verifyBalance(e.chain, tx.Payer, tx.AmountToReserve); err != nil {
		return err
	}

	dynamic, err := resolveDynamicData(e.chain, reserved)
	if err != nil {
		return err
	}
	if dynamic.CurrentSupply < tx.AmountToReserve.Amount {
		return fmt.Errorf("%w: supply %d reserve %d", errSupplyUnderflow, dynamic.CurrentSupply, tx.AmountToReserve.Amount)
	}

	e.ctx.asset = reserved
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) ReserveTx(tx *txs.ReserveTx) error {
	if err := a.chain.SubBalance(tx.Payer, tx.AmountToReserve); err != nil {
		return err
	}

	dynamic := a.ctx.dynamic
	newSupply, err := safemath.Sub(dynamic.CurrentSupply, tx.AmountToReserve.Amount)
	if err != nil {
		return err
	}
	dynamic.CurrentSupply = newSupply
	a.chain.PutDynamicData(dynamic)
	return nil
}
