// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/state"
	"github.com/luxfi/assetvm/txs"
)

func (env *environment) issueTx(assetID ids.ID, to ids.ShortID, amount uint64) *txs.IssueTx {
	return &txs.IssueTx{
		Issuer: env.issuer,
		To:     to,
		Amount: asset.Amount{Amount: amount, AssetID: assetID},
	}
}

func TestIssueSupplyBounds(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	tx := env.uiaCreateTx("GOLD")
	maxSupply := tx.Options.MaxSupply
	out := env.execute(t, tx)

	env.execute(t, env.issueTx(out.AssetID, env.holder, maxSupply-1))

	// Exactly the remaining headroom lands supply on max supply.
	env.execute(t, env.issueTx(out.AssetID, env.holder, 1))
	created, err := env.state.GetAsset(out.AssetID)
	require.NoError(err)
	dynamic, err := env.state.GetDynamicData(created.DynamicDataID)
	require.NoError(err)
	require.Equal(maxSupply, dynamic.CurrentSupply)

	// One more unit does not fit.
	_, err = Execute(env.backend, env.state, env.issueTx(out.AssetID, env.holder, 1))
	require.ErrorIs(err, errExceedsMaxSupply)
	require.ErrorIs(err, ErrPrecondition)
}

func TestIssueNotIssuer(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.uiaCreateTx("GOLD"))
	tx := env.issueTx(out.AssetID, env.holder, 10)
	tx.Issuer = env.holder
	_, err := Execute(env.backend, env.state, tx)
	require.ErrorIs(err, errNotIssuer)
}

func TestIssueMarketIssued(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.bitassetCreateTx("USD", 1))
	_, err := Execute(env.backend, env.state, env.issueTx(out.AssetID, env.holder, 10))
	require.ErrorIs(err, errMarketIssued)
}

func TestIssueWhitelist(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	authority := ids.GenerateTestShortID()
	env.state.PutAccount(&state.Account{Address: authority})

	tx := env.uiaCreateTx("GOLD")
	tx.Options.Flags = asset.WhiteList
	tx.Options.WhitelistAuthorities = []ids.ShortID{authority}
	out := env.execute(t, tx)

	// The holder is not whitelisted by the authority.
	_, err := Execute(env.backend, env.state, env.issueTx(out.AssetID, env.holder, 10))
	require.ErrorIs(err, errHolderNotAuthorized)

	holder, err := env.state.GetAccount(env.holder)
	require.NoError(err)
	holder.WhitelistingAccounts = []ids.ShortID{authority}
	env.state.PutAccount(holder)
	env.execute(t, env.issueTx(out.AssetID, env.holder, 10))
}

func TestIssueRestrictedReceiver(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.uiaCreateTx("GOLD"))

	holder, err := env.state.GetAccount(env.holder)
	require.NoError(err)
	holder.ReceiverRestricted = true
	env.state.PutAccount(holder)

	_, err = Execute(env.backend, env.state, env.issueTx(out.AssetID, env.holder, 10))
	require.ErrorIs(err, errRestrictedReceiver)
}

func TestIssuanceFamilySharesContract(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.uiaCreateTx("GOLD"))
	amount := asset.Amount{Amount: 10, AssetID: out.AssetID}

	env.execute(t, &txs.ReferralIssueTx{Issuer: env.issuer, To: env.holder, Amount: amount})
	env.execute(t, &txs.DailyIssueTx{Issuer: env.issuer, To: env.holder, Amount: amount})
	require.Equal(uint64(20), env.balance(t, env.holder, out.AssetID))

	// Bonus is a retained no-op.
	env.execute(t, &txs.BonusTx{Issuer: env.holder, Amount: amount})
	require.Equal(uint64(20), env.balance(t, env.holder, out.AssetID))
}

func TestReserve(t *testing.T) {
	require := require.New(t)
	env := newEnvironment(t)

	out := env.execute(t, env.uiaCreateTx("GOLD"))
	env.execute(t, env.issueTx(out.AssetID, env.holder, 100))

	env.execute(t, &txs.ReserveTx{
		Payer:           env.holder,
		AmountToReserve: asset.Amount{Amount: 40, AssetID: out.AssetID},
	})
	require.Equal(uint64(60), env.balance(t, env.holder, out.AssetID))

	created, err := env.state.GetAsset(out.AssetID)
	require.NoError(err)
	dynamic, err := env.state.GetDynamicData(created.DynamicDataID)
	require.NoError(err)
	require.Equal(uint64(60), dynamic.CurrentSupply)

	// The holder cannot burn more than they hold.
	_, err = Execute(env.backend, env.state, &txs.ReserveTx{
		Payer:           env.holder,
		AmountToReserve: asset.Amount{Amount: 61, AssetID: out.AssetID},
	})
	require.ErrorIs(err, errInsufficientBalance)
}
