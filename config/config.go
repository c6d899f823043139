// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"time"

	"github.com/luxfi/ids"
)

// Struct collecting all the foundational parameters of the asset VM.
type Config struct {
	// Fee that must be burned by every asset creating transaction. Half of
	// it (rounded up) is rebated into the new asset's fee pool.
	CreateAssetTxFee uint64 `json:"createAssetTxFee"`

	// Upper bound on the whitelist and blacklist authority sets of an asset.
	MaxAssetWhitelistAuthorities int `json:"maxAssetWhitelistAuthorities"`

	// Upper bound on the explicit feed-producer set of a bitasset.
	MaxAssetFeedPublishers int `json:"maxAssetFeedPublishers"`

	// Target block production interval. Feed lifetimes and settlement
	// delays must exceed it.
	BlockInterval time.Duration `json:"blockInterval"`

	// Account controlled by the committee. Committee-issued market assets
	// must be backed (directly or through one level of indirection) by the
	// core currency.
	CommitteeAccount ids.ShortID `json:"committeeAccount"`

	// Account whose authorized signers publish feeds for witness-fed assets.
	WitnessAccount ids.ShortID `json:"witnessAccount"`

	// Time of the upgrade requiring the asset-admin capability for asset
	// creation and updates.
	AssetCapabilityTime time.Time `json:"assetCapabilityTime"`

	// Time of the upgrade moving the sub-asset namespace split from the
	// first dot of the symbol to the last.
	SubassetNamespaceTime time.Time `json:"subassetNamespaceTime"`

	// Time of the upgrade enabling issuer claims of accumulated fees.
	FeeClaimTime time.Time `json:"feeClaimTime"`

	// Time of the upgrade requiring published core exchange rates to be
	// quoted in the core currency.
	CoreRateQuoteTime time.Time `json:"coreRateQuoteTime"`

	// Time of the upgrade allowing zero-supply assets to reinstate
	// previously revoked issuer permissions.
	PermissionLockTime time.Time `json:"permissionLockTime"`
}

// Rules is the immutable set of validation rules in force at one point of
// chain time. Evaluators fetch it once per operation rather than comparing
// timestamps inline.
type Rules struct {
	// Asset creation and updates require the issuer to hold the
	// asset-admin capability.
	RequireAssetCapability bool

	// The sub-asset namespace prefix is the text before the last dot of
	// the symbol. Before activation it is the text before the first dot.
	SubassetByLastDot bool

	// Issuers may claim accumulated fees.
	AllowFeeClaims bool

	// A published core exchange rate, when non-null, must be quoted in the
	// core currency. Before activation it must merely agree with the
	// settlement price's quote currency.
	RequireCoreRateQuote bool

	// An asset with zero outstanding supply may reinstate previously
	// revoked issuer permissions. Before activation the permission subset
	// rule applies regardless of supply.
	ZeroSupplyPermissionReset bool
}

// RulesAt returns the rules in force at [timestamp].
func (c *Config) RulesAt(timestamp time.Time) Rules {
	return Rules{
		RequireAssetCapability:    timestamp.After(c.AssetCapabilityTime),
		SubassetByLastDot:         timestamp.After(c.SubassetNamespaceTime),
		AllowFeeClaims:            timestamp.After(c.FeeClaimTime),
		RequireCoreRateQuote:      timestamp.After(c.CoreRateQuoteTime),
		ZeroSupplyPermissionReset: !timestamp.Before(c.PermissionLockTime),
	}
}
