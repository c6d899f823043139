// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

func (e *evaluator) UpdateBitassetTx(tx *txs.UpdateBitassetTx) error {
	updated, err := resolveAsset(e.chain, tx.AssetID)
	if err != nil {
		return err
	}
	if err := verifyIssuer(updated, tx.Issuer); err != nil {
		return err
	}
	bitasset, err := resolveBitassetData(e.chain, updated)
	if err != nil {
		return err
	}
	if bitasset.HasSettlement() {
		return fmt.Errorf("%w: %s", errAlreadySettled, updated.Symbol)
	}

	if tx.NewOptions.BackingAsset != bitasset.Options.BackingAsset {
		dynamic, err := resolveDynamicData(e.chain, updated)
		if err != nil {
			return err
		}
		if dynamic.CurrentSupply != 0 {
			return fmt.Errorf("%w: %s has supply %d", errBackingSupplyNonzero, updated.Symbol, dynamic.CurrentSupply)
		}
		if err := e.verifyBackingChain(tx.NewOptions.BackingAsset, updated.Issuer); err != nil {
			return err
		}
	}

	e.ctx.asset = updated
	e.ctx.bitasset = bitasset
	return nil
}

func (a *applier) UpdateBitassetTx(tx *txs.UpdateBitassetTx) error {
	bitasset := a.ctx.bitasset
	// A changed feed quorum can flip the current feed between null and
	// live, so the median is recomputed immediately rather than at the
	// next publication.
	recompute := bitasset.Options.MinimumFeeds != tx.NewOptions.MinimumFeeds
	bitasset.Options = tx.NewOptions
	if recompute {
		bitasset.UpdateMedianFeeds(a.ctx.now)
	}
	a.chain.PutBitassetData(bitasset)
	return nil
}

func (e *evaluator) UpdateFeedProducersTx(tx *txs.UpdateFeedProducersTx) error {
	updated, err := resolveAsset(e.chain, tx.AssetID)
	if err != nil {
		return err
	}
	if updated.Options.Flags&(asset.WitnessFed|asset.CommitteeFed) != 0 {
		return fmt.Errorf("%w: %s", errFeedModeDerived, updated.Symbol)
	}
	if err := verifyIssuer(updated, tx.Issuer); err != nil {
		return err
	}
	bitasset, err := resolveBitassetData(e.chain, updated)
	if err != nil {
		return err
	}

	if limit := e.backend.Config.MaxAssetFeedPublishers; len(tx.NewFeedProducers) > limit {
		return fmt.Errorf("%w: %d over %d", errTooManyProducers, len(tx.NewFeedProducers), limit)
	}
	if !slices.IsSortedFunc(tx.NewFeedProducers, func(x, y ids.ShortID) int {
		return bytes.Compare(x[:], y[:])
	}) || hasDuplicates(tx.NewFeedProducers) {
		return errUnsortedProducers
	}
	for _, producer := range tx.NewFeedProducers {
		if _, err := resolveAccount(e.chain, producer); err != nil {
			return err
		}
	}

	e.ctx.asset = updated
	e.ctx.bitasset = bitasset
	return nil
}

func hasDuplicates(addrs []ids.ShortID) bool {
	return set.Of(addrs...).Len() != len(addrs)
}

func (a *applier) UpdateFeedProducersTx(tx *txs.UpdateFeedProducersTx) error {
	bitasset := a.ctx.bitasset
	oldFeed := bitasset.CurrentFeed

	// Reconcile the stored submissions to exactly the new producer set:
	// removed producers lose their feeds, retained producers keep them,
	// new producers start with an empty placeholder.
	wanted := set.Of(tx.NewFeedProducers...)
	for _, entry := range slices.Clone(bitasset.Feeds) {
		if !wanted.Contains(entry.Publisher) {
			bitasset.DeleteFeed(entry.Publisher)
		}
	}
	for _, producer := range tx.NewFeedProducers {
		if !bitasset.HasProducer(producer) {
			bitasset.SetFeed(producer, state.TimestampedFeed{})
		}
	}

	bitasset.UpdateMedianFeeds(a.ctx.now)
	a.chain.PutBitassetData(bitasset)

	if !oldFeed.Equal(bitasset.CurrentFeed) {
		return a.backend.Margin.CheckCallOrders(a.chain, a.ctx.asset)
	}
	return nil
}

func (e *evaluator) PublishFeedTx(tx *txs.PublishFeedTx) error {
	published, err := resolveAsset(e.chain, tx.AssetID)
	if err != nil {
		return err
	}
	bitasset, err := resolveBitassetData(e.chain, published)
	if err != nil {
		return err
	}
	if bitasset.HasSettlement() {
		return fmt.Errorf("%w: %s", errAlreadySettled, published.Symbol)
	}

	price := tx.Feed.SettlementPrice
	if price.BaseAsset != published.ID || price.QuoteAsset != bitasset.Options.BackingAsset {
		return fmt.Errorf("%w: %s settles against %s", errWrongFeedQuote, published.Symbol, bitasset.Options.BackingAsset)
	}
	if rate := tx.Feed.CoreExchangeRate; !rate.IsNull() {
		if e.ctx.rules.RequireCoreRateQuote {
			if rate.QuoteAsset != asset.CoreID {
				return fmt.Errorf("%w: got %s", errWrongCoreRateQuote, rate.QuoteAsset)
			}
		} else if rate.QuoteAsset != price.QuoteAsset {
			return fmt.Errorf("%w: %s vs %s", errFeedQuoteDisagreement, rate.QuoteAsset, price.QuoteAsset)
		}
	}

	if err := e.verifyPublisher(published, bitasset, tx.Publisher); err != nil {
		return err
	}

	e.ctx.asset = published
	e.ctx.bitasset = bitasset
	return nil
}

// verifyPublisher checks the publisher against the asset's feed mode:
// witness- and committee-fed assets derive their producers from the
// authorized signers of the corresponding system account, every other
// bitasset carries an explicit producer set.
func (e *evaluator) verifyPublisher(published *state.Asset, bitasset *state.BitassetData, publisher ids.ShortID) error {
	var feeder ids.ShortID
	switch {
	case published.Options.Flags&asset.WitnessFed != 0:
		feeder = e.backend.Config.WitnessAccount
	case published.Options.Flags&asset.CommitteeFed != 0:
		feeder = e.backend.Config.CommitteeAccount
	default:
		if !bitasset.HasProducer(publisher) {
			return fmt.Errorf("%w: %s is not a producer for %s", errUnauthorizedPublisher, publisher, published.Symbol)
		}
		return nil
	}

	account, err := resolveAccount(e.chain, feeder)
	if err != nil {
		return err
	}
	if !account.HasActiveAuth(publisher) {
		return fmt.Errorf("%w: %s is not an active authority of %s", errUnauthorizedPublisher, publisher, feeder)
	}
	return nil
}

func (a *applier) PublishFeedTx(tx *txs.PublishFeedTx) error {
	bitasset := a.ctx.bitasset
	oldFeed := bitasset.CurrentFeed

	bitasset.SetFeed(tx.Publisher, state.TimestampedFeed{
		Time: uint64(max(a.ctx.now.Unix(), 0)),
		Feed: tx.Feed,
	})
	bitasset.UpdateMedianFeeds(a.ctx.now)
	a.chain.PutBitassetData(bitasset)

	if oldFeed.Equal(bitasset.CurrentFeed) {
		return nil
	}
	a.backend.Log.Debug("median feed moved",
		log.String("symbol", a.ctx.asset.Symbol),
		log.Stringer("publisher", tx.Publisher),
	)
	return a.backend.Margin.CheckCallOrders(a.chain, a.ctx.asset)
}
