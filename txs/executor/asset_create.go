// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

func (e *evaluator) CreateAssetTx(tx *txs.CreateAssetTx) error {
	caller, err := e.verifyCreateCapability(tx.Issuer, e.ctx.rules.RequireAssetCapability)
	if err != nil {
		return err
	}
	e.ctx.caller = caller

	if err := e.verifyAuthorityLists(&tx.Options); err != nil {
		return err
	}

	_, err = e.chain.GetAssetBySymbol(tx.Symbol)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %q", errSymbolTaken, tx.Symbol)
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	if err := e.verifySubassetPrefix(tx.Symbol, tx.Issuer); err != nil {
		return err
	}
	if err := verifyExchangeRate(tx.Options.CoreExchangeRate, tx.RateAutoFill); err != nil {
		return err
	}

	if tx.BitassetOptions != nil {
		if err := e.verifyBitassetCreation(tx); err != nil {
			return err
		}
	}

	if tx.Params.Premine > 0 {
		if tx.BitassetOptions != nil {
			return fmt.Errorf("%w: cannot premine %q", errMarketIssued, tx.Symbol)
		}
		if tx.Params.Premine > tx.Options.MaxSupply {
			return fmt.Errorf("%w: premine %d max supply %d", errPremineExceedsSupply, tx.Params.Premine, tx.Options.MaxSupply)
		}
		// The premine is issued to the issuer through the issuance
		// transition during apply; exclude its failure paths here.
		preview := &state.Asset{Symbol: tx.Symbol, Options: tx.Options}
		if err := verifyAuthorizedHolder(preview, caller); err != nil {
			return err
		}
		if caller.ReceiverRestricted {
			return fmt.Errorf("%w: %s", errRestrictedReceiver, caller.Address)
		}
	}

	if tx.Params.FeePayingAsset != asset.CoreID {
		if _, err := resolveAsset(e.chain, tx.Params.FeePayingAsset); err != nil {
			return err
		}
	}

	fee := e.backend.Config.CreateAssetTxFee
	if err := verifyBalance(e.chain, tx.Issuer, asset.Amount{Amount: fee, AssetID: asset.CoreID}); err != nil {
		return err
	}
	e.ctx.fee = fee
	e.ctx.rebate = fee - fee/2
	return nil
}

// verifySubassetPrefix enforces the dot-namespace rule: a dotted symbol may
// only be registered by the issuer of the asset named by its prefix. The
// prefix is the text before the last dot, or before the first dot under the
// legacy rule.
func (e *evaluator) verifySubassetPrefix(symbol string, issuer ids.ShortID) error {
	dot := strings.IndexByte(symbol, '.')
	if e.ctx.rules.SubassetByLastDot {
		dot = strings.LastIndexByte(symbol, '.')
	}
	if dot < 0 {
		return nil
	}
	prefix := symbol[:dot]

	parent, err := e.chain.GetAssetBySymbol(prefix)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: %q needs %q", errPrefixNotRegistered, symbol, prefix)
		}
		return err
	}
	if parent.Issuer != issuer {
		return fmt.Errorf("%w: %q is issued by %s", errPrefixIssuerMismatch, prefix, parent.Issuer)
	}
	return nil
}

// verifyExchangeRate checks the submitted core exchange rate given which
// side, if any, the creation routine will fill with the new asset's
// identifier.
func verifyExchangeRate(rate asset.Price, autoFill txs.AutoFill) error {
	if autoFill == txs.AutoFillNone {
		return rate.Verify()
	}
	if rate.BaseAmount == 0 || rate.QuoteAmount == 0 {
		return asset.ErrZeroPriceAmount
	}
	return nil
}

func (e *evaluator) verifyBitassetCreation(tx *txs.CreateAssetTx) error {
	opts := tx.BitassetOptions
	if err := e.verifyBackingChain(opts.BackingAsset, tx.Issuer); err != nil {
		return err
	}

	interval := e.backend.Config.BlockInterval
	if opts.FeedLifetime() <= interval || opts.ForceSettlementDelay() <= interval {
		return fmt.Errorf("%w: %s", errFeedIntervalTooShort, interval)
	}

	if tx.IsPredictionMarket {
		backing, err := resolveAsset(e.chain, opts.BackingAsset)
		if err != nil {
			return err
		}
		if tx.Precision != backing.Precision {
			return fmt.Errorf("%w: %d != %d", errPredictionPrecision, tx.Precision, backing.Precision)
		}
	}
	return nil
}

func (a *applier) CreateAssetTx(tx *txs.CreateAssetTx) error {
	if err := a.chain.SubBalance(tx.Issuer, asset.Amount{
		Amount:  a.ctx.fee,
		AssetID: asset.CoreID,
	}); err != nil {
		return err
	}

	assetID := a.chain.NewObjectID()
	dynamic := &state.AssetDynamicData{
		ID:      a.chain.NewObjectID(),
		FeePool: a.ctx.rebate,
	}
	a.chain.PutDynamicData(dynamic)

	options := tx.Options
	switch tx.RateAutoFill {
	case txs.AutoFillBase:
		options.CoreExchangeRate.BaseAsset = assetID
	case txs.AutoFillQuote:
		options.CoreExchangeRate.QuoteAsset = assetID
	}

	params := tx.Params
	if params.FeePayingAsset == asset.CoreID {
		params.FeePayingAsset = assetID
	}

	newAsset := &state.Asset{
		ID:            assetID,
		Symbol:        tx.Symbol,
		Issuer:        tx.Issuer,
		Precision:     tx.Precision,
		Options:       options,
		Params:        params,
		DynamicDataID: dynamic.ID,
	}
	if tx.BitassetOptions != nil {
		bitasset := &state.BitassetData{
			ID:                 a.chain.NewObjectID(),
			AssetID:            assetID,
			Options:            *tx.BitassetOptions,
			IsPredictionMarket: tx.IsPredictionMarket,
		}
		a.chain.PutBitassetData(bitasset)
		newAsset.BitassetDataID = bitasset.ID
	}
	a.chain.AddAsset(newAsset)

	if params.Premine > 0 {
		if err := a.execute(&txs.IssueTx{
			Issuer: tx.Issuer,
			To:     tx.Issuer,
			Amount: asset.Amount{Amount: params.Premine, AssetID: assetID},
		}); err != nil {
			return fmt.Errorf("premine issuance of %q: %w", tx.Symbol, err)
		}
	}

	a.backend.Log.Debug("created asset",
		log.String("symbol", tx.Symbol),
		log.Stringer("assetID", assetID),
		log.Stringer("issuer", tx.Issuer),
		log.Bool("marketIssued", tx.BitassetOptions != nil),
	)
	a.ctx.outcome.AssetID = assetID
	return nil
}

// execute runs a nested operation as a synchronous side effect of the
// enclosing apply. Failure classification is left to the enclosing
// operation.
func (a *applier) execute(tx txs.UnsignedTx) error {
	ctx := &opContext{
		now:   a.ctx.now,
		rules: a.ctx.rules,
	}
	if err := tx.Visit(&evaluator{backend: a.backend, chain: a.chain, ctx: ctx}); err != nil {
		return err
	}
	return tx.Visit(&applier{backend: a.backend, chain: a.chain, ctx: ctx})
}

func (e *evaluator) AllowCreateAssetTx(tx *txs.AllowCreateAssetTx) error {
	account, err := resolveAccount(e.chain, tx.To)
	if err != nil {
		return err
	}
	e.ctx.caller = account
	return nil
}

func (a *applier) AllowCreateAssetTx(tx *txs.AllowCreateAssetTx) error {
	account := a.ctx.caller
	account.CanCreateAsset = tx.Value
	a.chain.PutAccount(account)
	return nil
}
