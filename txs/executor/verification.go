// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
	"github.com/luxfi/assetvm/state"
)

func resolveAsset(chain state.Chain, assetID ids.ID) (*state.Asset, error) {
	a, err := chain.GetAsset(assetID)
	if err != nil {
		return nil, refErr(err, "asset %s", assetID)
	}
	return a, nil
}

func resolveAccount(chain state.Chain, addr ids.ShortID) (*state.Account, error) {
	account, err := chain.GetAccount(addr)
	if err != nil {
		return nil, refErr(err, "account %s", addr)
	}
	return account, nil
}

func resolveDynamicData(chain state.Chain, a *state.Asset) (*state.AssetDynamicData, error) {
	d, err := chain.GetDynamicData(a.DynamicDataID)
	if err != nil {
		return nil, refErr(err, "dynamic data of asset %s", a.Symbol)
	}
	return d, nil
}

func resolveBitassetData(chain state.Chain, a *state.Asset) (*state.BitassetData, error) {
	if !a.IsMarketIssued() {
		return nil, fmt.Errorf("%w: %s", errNotMarketIssued, a.Symbol)
	}
	b, err := chain.GetBitassetData(a.BitassetDataID)
	if err != nil {
		return nil, refErr(err, "bitasset data of asset %s", a.Symbol)
	}
	return b, nil
}

// verifyCreateCapability resolves the caller and, when the capability rule
// is in force, requires the asset-admin capability.
func (e *evaluator) verifyCreateCapability(caller ids.ShortID, required bool) (*state.Account, error) {
	account, err := resolveAccount(e.chain, caller)
	if err != nil {
		return nil, err
	}
	if required && !account.CanCreateAsset {
		return nil, fmt.Errorf("%w: %s", errNoAssetCapability, caller)
	}
	return account, nil
}

// verifyAuthorityLists bounds the white- and blacklist authority sets and
// requires every listed authority to resolve to a live account.
func (e *evaluator) verifyAuthorityLists(opts *asset.Options) error {
	limit := e.backend.Config.MaxAssetWhitelistAuthorities
	if len(opts.WhitelistAuthorities) > limit || len(opts.BlacklistAuthorities) > limit {
		return fmt.Errorf("%w: limit %d", errTooManyAuthorities, limit)
	}
	for _, authority := range opts.WhitelistAuthorities {
		if _, err := resolveAccount(e.chain, authority); err != nil {
			return err
		}
	}
	for _, authority := range opts.BlacklistAuthorities {
		if _, err := resolveAccount(e.chain, authority); err != nil {
			return err
		}
	}
	return nil
}

// verifyBackingChain enforces the two collateral-chain rules shared by
// creation, option updates that hand a market asset to the committee, and
// bitasset option updates: a bitasset backed by a bitasset must bottom out
// in a non-market asset within one step, and a committee-controlled market
// asset must bottom out in the core currency.
func (e *evaluator) verifyBackingChain(backingID ids.ID, issuer ids.ShortID) error {
	backing, err := resolveAsset(e.chain, backingID)
	if err != nil {
		return err
	}

	terminal := backing.ID
	if backing.IsMarketIssued() {
		backingData, err := resolveBitassetData(e.chain, backing)
		if err != nil {
			return err
		}
		grandBacking, err := resolveAsset(e.chain, backingData.Options.BackingAsset)
		if err != nil {
			return err
		}
		if grandBacking.IsMarketIssued() {
			return fmt.Errorf("%w: %s is backed by %s", errBackingChainTooDeep, backing.Symbol, grandBacking.Symbol)
		}
		terminal = grandBacking.ID
	}

	if issuer == e.backend.Config.CommitteeAccount && terminal != asset.CoreID {
		return fmt.Errorf("%w: chain ends at %s", errCommitteeBackingNotCore, terminal)
	}
	return nil
}

// verifyAuthorizedHolder applies the asset's authorization predicate to an
// account: while the WhiteList flag is set the account must be whitelisted
// by one of the asset's authorities and blacklisted by none.
func verifyAuthorizedHolder(a *state.Asset, account *state.Account) error {
	if a.Options.Flags&asset.WhiteList == 0 {
		return nil
	}
	if len(a.Options.WhitelistAuthorities) > 0 && !account.WhitelistedBy(a.Options.WhitelistAuthorities) {
		return fmt.Errorf("%w: %s is not whitelisted for %s", errHolderNotAuthorized, account.Address, a.Symbol)
	}
	if account.BlacklistedBy(a.Options.BlacklistAuthorities) {
		return fmt.Errorf("%w: %s is blacklisted for %s", errHolderNotAuthorized, account.Address, a.Symbol)
	}
	return nil
}

// verifyReceiver resolves the destination of an issuance and checks it may
// receive the asset.
func (e *evaluator) verifyReceiver(a *state.Asset, addr ids.ShortID) (*state.Account, error) {
	account, err := resolveAccount(e.chain, addr)
	if err != nil {
		return nil, err
	}
	if err := verifyAuthorizedHolder(a, account); err != nil {
		return nil, err
	}
	if account.ReceiverRestricted {
		return nil, fmt.Errorf("%w: %s", errRestrictedReceiver, addr)
	}
	return account, nil
}

// verifyPayer resolves the source of a reservation and checks it may pay
// the asset away.
func (e *evaluator) verifyPayer(a *state.Asset, addr ids.ShortID) (*state.Account, error) {
	account, err := resolveAccount(e.chain, addr)
	if err != nil {
		return nil, err
	}
	if err := verifyAuthorizedHolder(a, account); err != nil {
		return nil, err
	}
	if account.PayerRestricted {
		return nil, fmt.Errorf("%w: %s", errRestrictedPayer, addr)
	}
	return account, nil
}

// verifyIssuer requires the caller to be the asset's issuer.
func verifyIssuer(a *state.Asset, caller ids.ShortID) error {
	if a.Issuer != caller {
		return fmt.Errorf("%w: %s is issued by %s not %s", errNotIssuer, a.Symbol, a.Issuer, caller)
	}
	return nil
}

// verifyBalance requires the holder's balance in [amount]'s asset to cover
// it.
func verifyBalance(chain state.Chain, addr ids.ShortID, amount asset.Amount) error {
	balance, err := chain.GetBalance(addr, amount.AssetID)
	if err != nil {
		return err
	}
	if balance < amount.Amount {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d", errInsufficientBalance, addr, balance, amount.AssetID, amount.Amount)
	}
	return nil
}
