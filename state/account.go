// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

// Account is the slice of the account object this core consumes: the
// asset-admin capability, administrative transfer restrictions, the
// white/blacklist memberships used by asset authorization predicates, and
// the set of authorized signers consulted for witness- and committee-fed
// feed publication.
type Account struct {
	Address ids.ShortID `serialize:"true" json:"address"`

	// May create and update assets. Toggled by the committee.
	CanCreateAsset bool `serialize:"true" json:"canCreateAsset"`

	// Administratively barred from receiving or paying asset transfers.
	ReceiverRestricted bool `serialize:"true" json:"receiverRestricted"`
	PayerRestricted    bool `serialize:"true" json:"payerRestricted"`

	// Authorities that have white- or blacklisted this account, sorted and
	// unique.
	WhitelistingAccounts []ids.ShortID `serialize:"true" json:"whitelistingAccounts"`
	BlacklistingAccounts []ids.ShortID `serialize:"true" json:"blacklistingAccounts"`

	// Signers authorized to act for this account, sorted and unique.
	ActiveAuths []ids.ShortID `serialize:"true" json:"activeAuths"`
}

// HasActiveAuth reports whether [signer] is an authorized signer of the
// account.
func (a *Account) HasActiveAuth(signer ids.ShortID) bool {
	return set.Of(a.ActiveAuths...).Contains(signer)
}

// WhitelistedBy reports whether any of [authorities] whitelisted this
// account.
func (a *Account) WhitelistedBy(authorities []ids.ShortID) bool {
	listed := set.Of(a.WhitelistingAccounts...)
	for _, authority := range authorities {
		if listed.Contains(authority) {
			return true
		}
	}
	return false
}

// BlacklistedBy reports whether any of [authorities] blacklisted this
// account.
func (a *Account) BlacklistedBy(authorities []ids.ShortID) bool {
	listed := set.Of(a.BlacklistingAccounts...)
	for _, authority := range authorities {
		if listed.Contains(authority) {
			return true
		}
	}
	return false
}
