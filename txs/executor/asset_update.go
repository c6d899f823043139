// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

func (e *evaluator) UpdateAssetTx(tx *txs.UpdateAssetTx) error {
	// The first-generation update is only capability-gated once the
	// capability rule is in force.
	return e.verifyOptionUpdate(
		tx.Issuer,
		tx.AssetID,
		tx.NewIssuer,
		&tx.NewOptions,
		nil,
		e.ctx.rules.RequireAssetCapability,
	)
}

func (a *applier) UpdateAssetTx(tx *txs.UpdateAssetTx) error {
	return a.applyOptionUpdate(tx.NewIssuer, &tx.NewOptions, nil)
}

func (e *evaluator) UpdateAssetV2Tx(tx *txs.UpdateAssetV2Tx) error {
	return e.verifyOptionUpdate(
		tx.Issuer,
		tx.AssetID,
		tx.NewIssuer,
		&tx.NewOptions,
		&tx.NewParams,
		true,
	)
}

func (a *applier) UpdateAssetV2Tx(tx *txs.UpdateAssetV2Tx) error {
	return a.applyOptionUpdate(tx.NewIssuer, &tx.NewOptions, &tx.NewParams)
}

func (e *evaluator) verifyOptionUpdate(
	caller ids.ShortID,
	assetID ids.ID,
	newIssuer *ids.ShortID,
	newOpts *asset.Options,
	newParams *asset.Params,
	requireCapability bool,
) error {
	updated, err := resolveAsset(e.chain, assetID)
	if err != nil {
		return err
	}
	if err := verifyIssuer(updated, caller); err != nil {
		return err
	}
	account, err := e.verifyCreateCapability(caller, requireCapability)
	if err != nil {
		return err
	}

	resultingIssuer := updated.Issuer
	if newIssuer != nil && *newIssuer != updated.Issuer {
		if _, err := resolveAccount(e.chain, *newIssuer); err != nil {
			return err
		}
		// Handing a market asset to the committee subjects it to the
		// committee's collateral rules.
		if *newIssuer == e.backend.Config.CommitteeAccount && updated.IsMarketIssued() {
			bitasset, err := resolveBitassetData(e.chain, updated)
			if err != nil {
				return err
			}
			if err := e.verifyBackingChain(bitasset.Options.BackingAsset, *newIssuer); err != nil {
				return err
			}
		}
		resultingIssuer = *newIssuer
	}

	dynamic, err := resolveDynamicData(e.chain, updated)
	if err != nil {
		return err
	}

	if !e.ctx.rules.ZeroSupplyPermissionReset || dynamic.CurrentSupply != 0 {
		if newOpts.Permissions&^updated.Options.Permissions != 0 {
			return fmt.Errorf("%w: old %b new %b", errPermissionReinstate, updated.Options.Permissions, newOpts.Permissions)
		}
	}
	if (newOpts.Flags^updated.Options.Flags)&^updated.Options.Permissions != 0 {
		return fmt.Errorf("%w: old %b new %b permissions %b", errFlagsForbidden, updated.Options.Flags, newOpts.Flags, updated.Options.Permissions)
	}
	if err := e.verifyAuthorityLists(newOpts); err != nil {
		return err
	}

	premine := updated.Params.Premine
	if newParams != nil {
		premine = newParams.Premine
	}
	if premine > 0 {
		if updated.IsMarketIssued() {
			return fmt.Errorf("%w: cannot premine %s", errMarketIssued, updated.Symbol)
		}
		newSupply, err := safemath.Add(dynamic.CurrentSupply, premine)
		if err != nil || newSupply > newOpts.MaxSupply {
			return fmt.Errorf("%w: supply %d + %d over %d", errExceedsMaxSupply, dynamic.CurrentSupply, premine, newOpts.MaxSupply)
		}
		// Exclude the failure paths of the premine issuance performed
		// during apply.
		preview := &state.Asset{Symbol: updated.Symbol, Options: *newOpts}
		recipient := account
		if resultingIssuer != caller {
			if recipient, err = resolveAccount(e.chain, resultingIssuer); err != nil {
				return err
			}
		}
		if err := verifyAuthorizedHolder(preview, recipient); err != nil {
			return err
		}
		if recipient.ReceiverRestricted {
			return fmt.Errorf("%w: %s", errRestrictedReceiver, recipient.Address)
		}
	}

	e.ctx.caller = account
	e.ctx.asset = updated
	e.ctx.dynamic = dynamic
	return nil
}

func (a *applier) applyOptionUpdate(newIssuer *ids.ShortID, newOpts *asset.Options, newParams *asset.Params) error {
	updated := a.ctx.asset

	// Disabling force settlement cancels every pending request against the
	// asset. Each removal re-queries the index head, so the sweep is
	// bounded by the request count.
	if updated.CanForceSettle() && newOpts.Flags&asset.DisableForceSettle != 0 {
		cancelled := 0
		for {
			pending, ok := a.chain.FirstSettlement(updated.ID)
			if !ok {
				break
			}
			if err := a.chain.AddBalance(pending.Owner, pending.Balance); err != nil {
				return err
			}
			a.chain.DeleteSettlement(pending)
			cancelled++
		}
		if cancelled > 0 {
			a.backend.Log.Debug("cancelled pending settlements",
				log.String("symbol", updated.Symbol),
				log.Int("count", cancelled),
			)
		}
	}

	if newIssuer != nil {
		updated.Issuer = *newIssuer
	}
	updated.Options = *newOpts
	if newParams != nil {
		updated.Params = *newParams
	}
	a.chain.PutAsset(updated)

	if premine := updated.Params.Premine; premine > 0 {
		if err := a.execute(&txs.IssueTx{
			Issuer: updated.Issuer,
			To:     updated.Issuer,
			Amount: asset.Amount{Amount: premine, AssetID: updated.ID},
		}); err != nil {
			return fmt.Errorf("premine issuance of %q: %w", updated.Symbol, err)
		}
	}
	return nil
}
