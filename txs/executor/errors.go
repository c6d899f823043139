// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
)

// The three failure classes of the two-phase contract. Every evaluate-phase
// failure wraps ErrPrecondition or ErrReference and is recoverable: the
// operation is rejected before any mutation. ErrConflict marks an invariant
// the evaluate phase should have made unreachable surfacing during apply;
// callers must treat it as fatal to the enclosing block.
var (
	ErrPrecondition = errors.New("precondition violation")
	ErrReference    = errors.New("unresolved reference")
	ErrConflict     = errors.New("state conflict")

	errNoAssetCapability       = errors.New("issuer lacks the asset-admin capability")
	errTooManyAuthorities      = errors.New("authority list exceeds chain maximum")
	errSymbolTaken             = errors.New("symbol already registered")
	errPrefixNotRegistered     = errors.New("sub-asset prefix is not a registered asset")
	errPrefixIssuerMismatch    = errors.New("sub-asset may only be created by the issuer of its prefix")
	errBackingChainTooDeep     = errors.New("may not create a bitasset backed by a bitasset backed by a bitasset")
	errCommitteeBackingNotCore = errors.New("committee-controlled market asset must be backed by the core currency")
	errFeedIntervalTooShort    = errors.New("feed lifetime and settlement delay must exceed the block interval")
	errPredictionPrecision     = errors.New("prediction market precision must match its backing asset")
	errPremineExceedsSupply    = errors.New("premine exceeds max supply")
	errNotIssuer               = errors.New("caller is not the asset issuer")
	errMarketIssued            = errors.New("cannot manually adjust supply of a market-issued asset")
	errNotMarketIssued         = errors.New("asset is not market-issued")
	errHolderNotAuthorized     = errors.New("account fails the asset's authorization predicate")
	errRestrictedReceiver      = errors.New("account is restricted as a receiver")
	errRestrictedPayer         = errors.New("account is restricted as a payer")
	errExceedsMaxSupply        = errors.New("issuance would exceed max supply")
	errSupplyUnderflow         = errors.New("reservation exceeds outstanding supply")
	errFeePoolLiquidity        = errors.New("paying asset fee pool cannot cover the conversion")
	errRateNotCore             = errors.New("paying asset's exchange rate does not price the core currency")
	errFeeClaimsNotEnabled     = errors.New("fee claims are not enabled yet")
	errClaimExceedsAccumulated = errors.New("claim exceeds accumulated fees")
	errPermissionReinstate     = errors.New("cannot reinstate previously revoked issuer permissions")
	errFlagsForbidden          = errors.New("flag change is forbidden by issuer permissions")
	errAlreadySettled          = errors.New("asset has already globally settled")
	errBackingSupplyNonzero    = errors.New("cannot change backing asset while supply is outstanding")
	errFeedModeDerived         = errors.New("producer set of a witness- or committee-fed asset is derived")
	errTooManyProducers        = errors.New("producer set exceeds chain maximum")
	errUnsortedProducers       = errors.New("producer set must be sorted and unique")
	errWrongFeedQuote          = errors.New("settlement price must be quoted in the backing asset")
	errWrongCoreRateQuote      = errors.New("core exchange rate must be quoted in the core currency")
	errFeedQuoteDisagreement   = errors.New("settlement price and core exchange rate quote currencies disagree")
	errUnauthorizedPublisher   = errors.New("publisher is not authorized for this asset")
	errGlobalSettleForbidden   = errors.New("asset does not permit global settlement")
	errNoSupply                = errors.New("no outstanding supply to settle")
	errNoOpenPositions         = errors.New("no open positions back the outstanding supply")
	errUndercollateralized     = errors.New("least collateralized short lacks sufficient collateral to settle at this price")
	errForceSettleForbidden    = errors.New("asset does not permit force settlement")
	errPredictionNotSettled    = errors.New("prediction market must globally settle before force settlement")
	errInsufficientFeeds       = errors.New("cannot force settle with no price feed")
	errInsufficientBalance     = errors.New("balance does not cover the settlement amount")
	errSettlementFundExhausted = errors.New("settlement fund does not cover the conversion")
)

// refErr classifies a lookup failure: a missing object becomes an
// ErrReference, anything else (store corruption) passes through untouched.
func refErr(err error, format string, args ...any) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrReference, fmt.Sprintf(format, args...), err)
	}
	return err
}
