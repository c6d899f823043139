// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/ids"
)

// Flags are the issuer-controlled behavior bits of an asset. The same bit
// set doubles as the issuer permission mask: a flag may only be set while
// the corresponding permission bit is held.
type Flags uint32

const (
	ChargeMarketFee Flags = 1 << iota
	WhiteList
	OverrideAuthority
	TransferRestricted
	DisableForceSettle
	GlobalSettle
	DisableConfidential
	WitnessFed
	CommitteeFed

	// UIAPermissionMask are the bits meaningful for user-issued assets.
	UIAPermissionMask = ChargeMarketFee | WhiteList | OverrideAuthority |
		TransferRestricted | DisableConfidential

	// MarketPermissionMask adds the bits meaningful only for market-issued
	// assets.
	MarketPermissionMask = UIAPermissionMask | DisableForceSettle |
		GlobalSettle | WitnessFed | CommitteeFed
)

var (
	errFlagsOutsidePermissions = errors.New("flags set outside issuer permissions")
	errUnknownPermissionBits   = errors.New("unknown permission bits")
)

// Options is the issuer-controlled option bundle of an asset.
type Options struct {
	MaxSupply   uint64 `serialize:"true" json:"maxSupply"`
	Flags       Flags  `serialize:"true" json:"flags"`
	Permissions Flags  `serialize:"true" json:"permissions"`

	// Holders must be whitelisted by one of these authorities while the
	// WhiteList flag is set, sorted and unique.
	WhitelistAuthorities []ids.ShortID `serialize:"true" json:"whitelistAuthorities"`
	// Holders blacklisted by any of these authorities are barred, sorted
	// and unique.
	BlacklistAuthorities []ids.ShortID `serialize:"true" json:"blacklistAuthorities"`

	// Rate the fee pool honors when fees are paid in this asset.
	CoreExchangeRate Price `serialize:"true" json:"coreExchangeRate"`
}

func (o *Options) Verify() error {
	switch {
	case o.Permissions&^MarketPermissionMask != 0:
		return fmt.Errorf("%w: %b", errUnknownPermissionBits, o.Permissions)
	case o.Flags&^o.Permissions != 0:
		return fmt.Errorf("%w: flags %b permissions %b", errFlagsOutsidePermissions, o.Flags, o.Permissions)
	}
	return nil
}

// Params are the issuer parameters updatable only by the second-generation
// update operation.
type Params struct {
	// Amount issued to the issuer on creation and on every update that
	// carries it.
	Premine uint64 `serialize:"true" json:"premine"`

	// Asset fees for operations on this asset are paid in. The core
	// currency acts as a placeholder resolved to the asset itself on
	// creation.
	FeePayingAsset ids.ID `serialize:"true" json:"feePayingAsset"`
}

// BitassetOptions configure a market-issued asset.
type BitassetOptions struct {
	// Collateral currency backing the asset.
	BackingAsset ids.ID `serialize:"true" json:"backingAsset"`

	// Feeds older than this no longer count toward the median, in seconds.
	FeedLifetimeSec uint64 `serialize:"true" json:"feedLifetimeSec"`

	// Delay between a force-settlement request and its maturity, in
	// seconds.
	ForceSettlementDelaySec uint64 `serialize:"true" json:"forceSettlementDelaySec"`

	// Fewer fresh feeds than this leaves the asset without a current feed.
	MinimumFeeds uint64 `serialize:"true" json:"minimumFeeds"`
}

// FeedLifetime returns the feed lifetime as a duration.
func (o *BitassetOptions) FeedLifetime() time.Duration {
	return time.Duration(o.FeedLifetimeSec) * time.Second
}

// ForceSettlementDelay returns the settlement delay as a duration.
func (o *BitassetOptions) ForceSettlementDelay() time.Duration {
	return time.Duration(o.ForceSettlementDelaySec) * time.Second
}

func (o *BitassetOptions) Verify() error {
	if o.MinimumFeeds == 0 {
		return errors.New("minimum feeds must be positive")
	}
	return nil
}
