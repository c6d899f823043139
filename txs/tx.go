// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
)

var (
	ErrNilTx = errors.New("tx is nil")

	errZeroAmount = errors.New("amount must be positive")
)

// UnsignedTx is an unsigned asset-ledger operation.
type UnsignedTx interface {
	// SyntacticVerify performs the stateless checks of the operation.
	SyntacticVerify() error

	// Visit dispatches the operation to [visitor].
	Visit(visitor Visitor) error
}
