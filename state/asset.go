// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"bytes"
	"slices"
	"sort"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

// Asset is the static description of an issued currency. Frequently mutated
// counters live on the separate AssetDynamicData object so that supply and
// fee-pool churn does not rewrite this record.
type Asset struct {
	ID        ids.ID       `serialize:"true" json:"id"`
	Symbol    string       `serialize:"true" json:"symbol"`
	Issuer    ids.ShortID  `serialize:"true" json:"issuer"`
	Precision uint8        `serialize:"true" json:"precision"`
	Options   asset.Options `serialize:"true" json:"options"`
	Params    asset.Params  `serialize:"true" json:"params"`

	DynamicDataID ids.ID `serialize:"true" json:"dynamicDataID"`
	// Empty iff the asset is not market-issued.
	BitassetDataID ids.ID `serialize:"true" json:"bitassetDataID"`
}

func (a *Asset) IsMarketIssued() bool {
	return a.BitassetDataID != ids.Empty
}

func (a *Asset) CanForceSettle() bool {
	return a.Options.Flags&asset.DisableForceSettle == 0
}

func (a *Asset) CanGlobalSettle() bool {
	return a.Options.Flags&asset.GlobalSettle != 0
}

// AssetDynamicData carries the mutable counters of an asset.
type AssetDynamicData struct {
	ID ids.ID `serialize:"true" json:"id"`

	CurrentSupply uint64 `serialize:"true" json:"currentSupply"`
	// Core-currency balance subsidizing fees paid in the asset.
	FeePool uint64 `serialize:"true" json:"feePool"`
	// Fees accumulated in the asset's own units, claimable by the issuer.
	AccumulatedFees uint64 `serialize:"true" json:"accumulatedFees"`
}

// TimestampedFeed is one producer's submission together with its unix time
// of publication. A zero time marks a producer slot that has not received a
// submission yet.
type TimestampedFeed struct {
	Time uint64          `serialize:"true" json:"time"`
	Feed asset.PriceFeed `serialize:"true" json:"feed"`
}

// FeedEntry binds a producer to its last submission. Entries are kept sorted
// by publisher so iteration order is the same on every node.
type FeedEntry struct {
	Publisher ids.ShortID     `serialize:"true" json:"publisher"`
	Feed      TimestampedFeed `serialize:"true" json:"feed"`
}

// BitassetData carries the market-issued extension of an asset.
type BitassetData struct {
	ID      ids.ID `serialize:"true" json:"id"`
	AssetID ids.ID `serialize:"true" json:"assetID"`

	Options asset.BitassetOptions `serialize:"true" json:"options"`

	// Last submission per authorized producer, sorted by publisher.
	Feeds []FeedEntry `serialize:"true" json:"feeds"`

	// Aggregated median of the fresh feeds. Null when fewer than
	// Options.MinimumFeeds are fresh.
	CurrentFeed asset.PriceFeed `serialize:"true" json:"currentFeed"`

	// Set once by global settlement, after which the asset is permanently
	// settled and its feed set is frozen.
	SettlementPrice asset.Price `serialize:"true" json:"settlementPrice"`
	SettlementFund  uint64      `serialize:"true" json:"settlementFund"`

	IsPredictionMarket bool `serialize:"true" json:"isPredictionMarket"`
}

func (b *BitassetData) HasSettlement() bool {
	return !b.SettlementPrice.IsNull()
}

func (b *BitassetData) feedIndex(publisher ids.ShortID) (int, bool) {
	return slices.BinarySearchFunc(b.Feeds, publisher, func(e FeedEntry, p ids.ShortID) int {
		return bytes.Compare(e.Publisher[:], p[:])
	})
}

// FeedOf returns the last submission of [publisher].
func (b *BitassetData) FeedOf(publisher ids.ShortID) (TimestampedFeed, bool) {
	i, ok := b.feedIndex(publisher)
	if !ok {
		return TimestampedFeed{}, false
	}
	return b.Feeds[i].Feed, true
}

// HasProducer reports whether [publisher] is part of the producer set.
func (b *BitassetData) HasProducer(publisher ids.ShortID) bool {
	_, ok := b.feedIndex(publisher)
	return ok
}

// SetFeed records [feed] as the last submission of [publisher], inserting a
// producer slot if one does not exist yet.
func (b *BitassetData) SetFeed(publisher ids.ShortID, feed TimestampedFeed) {
	i, ok := b.feedIndex(publisher)
	if ok {
		b.Feeds[i].Feed = feed
		return
	}
	b.Feeds = slices.Insert(b.Feeds, i, FeedEntry{
		Publisher: publisher,
		Feed:      feed,
	})
}

// DeleteFeed removes [publisher] and its submission from the producer set.
func (b *BitassetData) DeleteFeed(publisher ids.ShortID) {
	if i, ok := b.feedIndex(publisher); ok {
		b.Feeds = slices.Delete(b.Feeds, i, i+1)
	}
}

// UpdateMedianFeeds recomputes CurrentFeed from the submissions that are
// still fresh at [now]. Feeds older than the feed lifetime, and producer
// slots that never received a submission, are dropped. If fewer than the
// minimum remain the current feed becomes null. Otherwise the settlement
// price and the core exchange rate are medianed independently: surviving
// values sort ascending by the cross-multiplied ratio order of
// [asset.Price.Cmp] and the element at index (n-1)/2 is taken.
func (b *BitassetData) UpdateMedianFeeds(now time.Time) {
	nowUnix := uint64(max(now.Unix(), 0))
	current := make([]asset.PriceFeed, 0, len(b.Feeds))
	for _, entry := range b.Feeds {
		if entry.Feed.Time == 0 || entry.Feed.Feed.SettlementPrice.IsNull() {
			continue
		}
		if entry.Feed.Time+b.Options.FeedLifetimeSec < nowUnix {
			continue
		}
		current = append(current, entry.Feed.Feed)
	}

	if uint64(len(current)) < b.Options.MinimumFeeds {
		b.CurrentFeed = asset.PriceFeed{}
		return
	}

	settlementPrices := make([]asset.Price, len(current))
	exchangeRates := make([]asset.Price, len(current))
	for i, feed := range current {
		settlementPrices[i] = feed.SettlementPrice
		exchangeRates[i] = feed.CoreExchangeRate
	}
	b.CurrentFeed = asset.PriceFeed{
		SettlementPrice:  medianPrice(settlementPrices),
		CoreExchangeRate: medianPrice(exchangeRates),
	}
}

func medianPrice(prices []asset.Price) asset.Price {
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Less(prices[j])
	})
	return prices[(len(prices)-1)/2]
}
