// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/luxfi/utils"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/config"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
	"github.com/luxfi/assetvm/utils/timer/mockable"
)

const (
	defaultCreateAssetTxFee = 1_000
	defaultBalance          = 1_000_000

	defaultFeedLifetimeSec    = 3_600
	defaultSettleDelaySec     = 600
	defaultBlockInterval      = 3 * time.Second
	defaultMaxAuthorities     = 10
	defaultMaxFeedPublishers  = 10
	defaultBitassetMaxSupply  = 1_000_000_000
	defaultCorePrecision      = 5
)

var genesisTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

type fakeMarginEngine struct {
	checked []ids.ID
	settled []ids.ID
}

func (m *fakeMarginEngine) CheckCallOrders(_ state.Chain, a *state.Asset) error {
	m.checked = append(m.checked, a.ID)
	return nil
}

// GloballySettleAsset mimics the production engine far enough for the
// executors' contract: it freezes the settlement price and sizes the fund
// to cover the outstanding supply at that price.
func (m *fakeMarginEngine) GloballySettleAsset(chain state.Chain, a *state.Asset, price asset.Price) error {
	bitasset, err := chain.GetBitassetData(a.BitassetDataID)
	if err != nil {
		return err
	}
	dynamic, err := chain.GetDynamicData(a.DynamicDataID)
	if err != nil {
		return err
	}
	fund, err := asset.Amount{
		Amount:  dynamic.CurrentSupply,
		AssetID: a.ID,
	}.Multiply(price)
	if err != nil {
		return err
	}
	bitasset.SettlementPrice = price
	bitasset.SettlementFund = fund.Amount
	chain.PutBitassetData(bitasset)

	m.settled = append(m.settled, a.ID)
	return nil
}

type environment struct {
	clk     mockable.Clock
	config  *config.Config
	state   state.State
	margin  *fakeMarginEngine
	backend *Backend

	committee ids.ShortID
	witness   ids.ShortID
	issuer    ids.ShortID
	holder    ids.ShortID
}

// newEnvironment builds a committed genesis with the core asset, the system
// accounts, a capability-holding issuer, and a funded holder. All upgrades
// are active; [overrides] push individual upgrade times around.
func newEnvironment(t *testing.T, overrides ...func(*config.Config)) *environment {
	require := require.New(t)

	env := &environment{
		margin:    &fakeMarginEngine{},
		committee: ids.GenerateTestShortID(),
		witness:   ids.GenerateTestShortID(),
		issuer:    ids.GenerateTestShortID(),
		holder:    ids.GenerateTestShortID(),
	}
	env.clk.Set(genesisTime)

	activated := genesisTime.Add(-time.Hour)
	env.config = &config.Config{
		CreateAssetTxFee:             defaultCreateAssetTxFee,
		MaxAssetWhitelistAuthorities: defaultMaxAuthorities,
		MaxAssetFeedPublishers:       defaultMaxFeedPublishers,
		BlockInterval:                defaultBlockInterval,
		CommitteeAccount:             env.committee,
		WitnessAccount:               env.witness,
		AssetCapabilityTime:          activated,
		SubassetNamespaceTime:        activated,
		FeeClaimTime:                 activated,
		CoreRateQuoteTime:            activated,
		PermissionLockTime:           activated,
	}
	for _, override := range overrides {
		override(env.config)
	}

	st, err := state.New(memdb.New(), metric.NewRegistry(), log.NoLog{})
	require.NoError(err)
	env.state = st
	st.SetTimestamp(env.clk.Time())

	core := &state.Asset{
		ID:        asset.CoreID,
		Symbol:    "CORE",
		Issuer:    env.committee,
		Precision: defaultCorePrecision,
		Options: asset.Options{
			MaxSupply: math.MaxUint64,
		},
		DynamicDataID: st.NewObjectID(),
	}
	st.PutDynamicData(&state.AssetDynamicData{
		ID:            core.DynamicDataID,
		CurrentSupply: 10 * defaultBalance,
	})
	st.AddAsset(core)

	st.PutAccount(&state.Account{Address: env.committee, CanCreateAsset: true})
	st.PutAccount(&state.Account{Address: env.witness})
	st.PutAccount(&state.Account{Address: env.issuer, CanCreateAsset: true})
	st.PutAccount(&state.Account{Address: env.holder})
	for _, addr := range []ids.ShortID{env.committee, env.issuer, env.holder} {
		require.NoError(st.AddBalance(addr, asset.Amount{
			Amount:  defaultBalance,
			AssetID: asset.CoreID,
		}))
	}
	require.NoError(st.Commit())

	env.backend = &Backend{
		Config: env.config,
		Margin: env.margin,
		Log:    log.NoLog{},
	}

	t.Cleanup(func() {
		require.NoError(env.state.Close())
	})
	return env
}

// advanceTime moves both the fake clock and chain time forward.
func (env *environment) advanceTime(d time.Duration) {
	env.clk.Set(env.clk.Time().Add(d))
	env.state.SetTimestamp(env.clk.Time())
}

func (env *environment) execute(t *testing.T, tx txs.UnsignedTx) *Outcome {
	t.Helper()
	out, err := Execute(env.backend, env.state, tx)
	require.NoError(t, err)
	return out
}

// uiaCreateTx returns a valid user-issued asset creation with the new asset
// filling the base side of its exchange rate against the core currency.
func (env *environment) uiaCreateTx(symbol string) *txs.CreateAssetTx {
	return &txs.CreateAssetTx{
		Issuer:    env.issuer,
		Symbol:    symbol,
		Precision: 4,
		Options: asset.Options{
			MaxSupply:   1_000_000,
			Permissions: asset.UIAPermissionMask,
			CoreExchangeRate: asset.Price{
				BaseAmount:  1,
				QuoteAmount: 1,
				QuoteAsset:  asset.CoreID,
			},
		},
		RateAutoFill: txs.AutoFillBase,
	}
}

// bitassetCreateTx returns a valid core-backed bitasset creation.
func (env *environment) bitassetCreateTx(symbol string, minimumFeeds uint64) *txs.CreateAssetTx {
	tx := env.uiaCreateTx(symbol)
	tx.Precision = defaultCorePrecision
	tx.Options.MaxSupply = defaultBitassetMaxSupply
	tx.Options.Permissions = asset.MarketPermissionMask
	tx.Options.Flags = asset.GlobalSettle
	tx.BitassetOptions = &asset.BitassetOptions{
		BackingAsset:            asset.CoreID,
		FeedLifetimeSec:         defaultFeedLifetimeSec,
		ForceSettlementDelaySec: defaultSettleDelaySec,
		MinimumFeeds:            minimumFeeds,
	}
	return tx
}

// addProducers registers [n] feed-producer accounts on [assetID] and
// returns them sorted the way the producer set requires.
func (env *environment) addProducers(t *testing.T, assetID ids.ID, n int) []ids.ShortID {
	producers := make([]ids.ShortID, n)
	for i := range producers {
		producers[i] = ids.GenerateTestShortID()
		env.state.PutAccount(&state.Account{Address: producers[i]})
	}
	utils.Sort(producers)
	env.execute(t, &txs.UpdateFeedProducersTx{
		Issuer:           env.issuer,
		AssetID:          assetID,
		NewFeedProducers: producers,
	})
	return producers
}

// feedAt builds a publishable feed pricing [amount] units of the asset at
// [quote] units of core.
func feedAt(assetID ids.ID, amount uint64, quote uint64) asset.PriceFeed {
	price := asset.Price{
		BaseAmount:  amount,
		BaseAsset:   assetID,
		QuoteAmount: quote,
		QuoteAsset:  asset.CoreID,
	}
	return asset.PriceFeed{
		SettlementPrice:  price,
		CoreExchangeRate: price,
	}
}

func (env *environment) balance(t *testing.T, addr ids.ShortID, assetID ids.ID) uint64 {
	t.Helper()
	balance, err := env.state.GetBalance(addr, assetID)
	require.NoError(t, err)
	return balance
}
