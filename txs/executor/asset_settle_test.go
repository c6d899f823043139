// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

// borrow mimics the margin engine side of a short: it mints supply into the
// holder against a call order on record.
func (env *environment) borrow(t *testing.T, assetID ids.ID, debt uint64, collateral uint64) *state.CallOrder {
	t.Helper()
	require := require.New(t)

	created, err := env.state.GetAsset(assetID)
	require.NoError(err)
	dynamic, err := env.state.GetDynamicData(created.DynamicDataID)
	require.NoError(err)
	dynamic.CurrentSupply += debt
	env.state.PutDynamicData(dynamic)
	require.NoError(env.state.AddBalance(env.holder, asset.Amount{Amount: debt, AssetID: assetID}))

	order := &state.CallOrder{
		ID:         env.state.NewObjectID(),
		Borrower:   env.holder,
		Collateral: asset.Amount{Amount: collateral, AssetID: asset.CoreID},
		Debt:       asset.Amount{Amount: debt, AssetID: assetID},
	}
	env.state.PutCallOrder(order)
	return order
}

func (env *environment) settlePrice(assetID ids.ID, amount uint64, quote uint64) asset.Price {
	return asset.Price{
		BaseAmount:  amount,
		BaseAsset:   assetID,
		QuoteAmount: quote,
		QuoteAsset:  asset.CoreID,
	}
}

func TestGlobalSettle(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	env.borrow(t, out.AssetID, 100, 1_000)

	env.execute(t, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 5),
	})
	require.Equal([]ids.ID{out.AssetID}, env.margin.settled)

	created, err := env.state.GetAsset(out.AssetID)
	require.NoError(err)
	bitasset, err := env.state.GetBitassetData(created.BitassetDataID)
	require.NoError(err)
	require.True(bitasset.HasSettlement())
	require.Equal(uint64(500), bitasset.SettlementFund)

	// Settling twice is rejected.
	_, err = Execute(env.backend, env.state, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 5),
	})
	require.ErrorIs(err, errAlreadySettled)
}

func TestGlobalSettlePriceBound(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	env.borrow(t, out.AssetID, 100, 1_000)

	// At 1 USD : 11 core the weakest short's debt is worth 1100 core,
	// more than its 1000 collateral.
	_, err := Execute(env.backend, env.state, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 11),
	})
	require.ErrorIs(err, errUndercollateralized)
}

func TestGlobalSettleLeastCollateralizedBounds(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	env.borrow(t, out.AssetID, 100, 2_000)
	env.borrow(t, out.AssetID, 100, 1_000)

	// The weaker of the two positions is the binding one.
	_, err := Execute(env.backend, env.state, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 15),
	})
	require.ErrorIs(err, errUndercollateralized)

	env.execute(t, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 10),
	})
}

func TestGlobalSettlePreconditions(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	// No global-settle permission flag.
	tx := env.bitassetCreateTx("USD", 1)
	tx.Options.Flags = 0
	out := env.execute(t, tx)
	env.borrow(t, out.AssetID, 100, 1_000)
	_, err := Execute(env.backend, env.state, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 5),
	})
	require.ErrorIs(err, errGlobalSettleForbidden)

	// No outstanding supply.
	empty := env.execute(t, env.bitassetCreateTx("EUR", 1))
	_, err = Execute(env.backend, env.state, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     empty.AssetID,
		SettlePrice: env.settlePrice(empty.AssetID, 1, 5),
	})
	require.ErrorIs(err, errNoSupply)
}

func TestSettleInsufficientFeeds(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	env.borrow(t, out.AssetID, 100, 1_000)

	// No feed published and no global settlement: the request has no
	// price to settle at, now or at maturity.
	_, err := Execute(env.backend, env.state, &txs.SettleTx{
		Account: env.holder,
		Amount:  asset.Amount{Amount: 10, AssetID: out.AssetID},
	})
	require.ErrorIs(err, errInsufficientFeeds)
}

func TestSettlePendingRequest(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	producers := env.addProducers(t, out.AssetID, 1)
	env.execute(t, &txs.PublishFeedTx{
		Publisher: producers[0],
		AssetID:   out.AssetID,
		Feed:      feedAt(out.AssetID, 1, 5),
	})
	env.borrow(t, out.AssetID, 100, 1_000)

	outcome := env.execute(t, &txs.SettleTx{
		Account: env.holder,
		Amount:  asset.Amount{Amount: 40, AssetID: out.AssetID},
	})
	require.Nil(outcome.SettledAmount)
	require.NotEqual(ids.Empty, outcome.SettlementID)

	// The balance is parked on the request until the maturity sweep.
	require.Equal(uint64(60), env.balance(t, env.holder, out.AssetID))
	pending, ok := env.state.FirstSettlement(out.AssetID)
	require.True(ok)
	require.Equal(outcome.SettlementID, pending.ID)
	require.Equal(env.holder, pending.Owner)

	wantDate := uint64(genesisTime.Add(defaultSettleDelaySec * time.Second).Unix())
	require.Equal(wantDate, pending.SettlementDate)
}

func TestSettleAfterGlobalSettlement(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	env.borrow(t, out.AssetID, 100, 1_000)
	env.execute(t, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 5),
	})

	coreBefore := env.balance(t, env.holder, asset.CoreID)
	outcome := env.execute(t, &txs.SettleTx{
		Account: env.holder,
		Amount:  asset.Amount{Amount: 40, AssetID: out.AssetID},
	})

	// Immediate conversion at the frozen price, never a pending request.
	require.NotNil(outcome.SettledAmount)
	require.Equal(uint64(200), outcome.SettledAmount.Amount)
	require.Equal(asset.CoreID, outcome.SettledAmount.AssetID)
	require.Equal(ids.Empty, outcome.SettlementID)
	_, ok := env.state.FirstSettlement(out.AssetID)
	require.False(ok)

	require.Equal(coreBefore+200, env.balance(t, env.holder, asset.CoreID))
	require.Equal(uint64(60), env.balance(t, env.holder, out.AssetID))

	created, err := env.state.GetAsset(out.AssetID)
	require.NoError(err)
	dynamic, err := env.state.GetDynamicData(created.DynamicDataID)
	require.NoError(err)
	require.Equal(uint64(60), dynamic.CurrentSupply)
	bitasset, err := env.state.GetBitassetData(created.BitassetDataID)
	require.NoError(err)
	require.Equal(uint64(300), bitasset.SettlementFund)
}

func TestSettlePredictionMarket(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	tx := env.bitassetCreateTx("YES", 1)
	tx.IsPredictionMarket = true
	out := env.execute(t, tx)
	producers := env.addProducers(t, out.AssetID, 1)
	env.execute(t, &txs.PublishFeedTx{
		Publisher: producers[0],
		AssetID:   out.AssetID,
		Feed:      feedAt(out.AssetID, 1, 1),
	})
	env.borrow(t, out.AssetID, 100, 100)

	// A prediction market only settles after the outcome is fixed.
	_, err := Execute(env.backend, env.state, &txs.SettleTx{
		Account: env.holder,
		Amount:  asset.Amount{Amount: 10, AssetID: out.AssetID},
	})
	require.ErrorIs(err, errPredictionNotSettled)

	env.execute(t, &txs.GlobalSettleTx{
		Issuer:      env.issuer,
		AssetID:     out.AssetID,
		SettlePrice: env.settlePrice(out.AssetID, 1, 1),
	})
	outcome := env.execute(t, &txs.SettleTx{
		Account: env.holder,
		Amount:  asset.Amount{Amount: 10, AssetID: out.AssetID},
	})
	require.NotNil(outcome.SettledAmount)
	require.Equal(uint64(10), outcome.SettledAmount.Amount)
}

func TestSettleForceSettleDisabled(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	tx := env.bitassetCreateTx("USD", 1)
	tx.Options.Flags |= asset.DisableForceSettle
	out := env.execute(t, tx)
	env.borrow(t, out.AssetID, 100, 1_000)

	_, err := Execute(env.backend, env.state, &txs.SettleTx{
		Account: env.holder,
		Amount:  asset.Amount{Amount: 10, AssetID: out.AssetID},
	})
	require.ErrorIs(err, errForceSettleForbidden)
}
