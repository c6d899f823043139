// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

var (
	_ UnsignedTx = (*IssueTx)(nil)
	_ UnsignedTx = (*BonusTx)(nil)
	_ UnsignedTx = (*ReferralIssueTx)(nil)
	_ UnsignedTx = (*DailyIssueTx)(nil)
	_ UnsignedTx = (*ReserveTx)(nil)
)

// IssueTx creates new supply of a user-issued asset and credits it to a
// destination account.
type IssueTx struct {
	Issuer ids.ShortID  `serialize:"true" json:"issuer"`
	To     ids.ShortID  `serialize:"true" json:"to"`
	Amount asset.Amount `serialize:"true" json:"amount"`
}

func (tx *IssueTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.Amount.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *IssueTx) Visit(visitor Visitor) error {
	return visitor.IssueTx(tx)
}

// BonusTx is retained for wire compatibility. It validates and applies as a
// no-op.
type BonusTx struct {
	Issuer ids.ShortID  `serialize:"true" json:"issuer"`
	Amount asset.Amount `serialize:"true" json:"amount"`
}

func (tx *BonusTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *BonusTx) Visit(visitor Visitor) error {
	return visitor.BonusTx(tx)
}

// ReferralIssueTx issues supply as a referral reward. It shares the
// issuance contract of IssueTx.
type ReferralIssueTx struct {
	Issuer ids.ShortID  `serialize:"true" json:"issuer"`
	To     ids.ShortID  `serialize:"true" json:"to"`
	Amount asset.Amount `serialize:"true" json:"amount"`
}

func (tx *ReferralIssueTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.Amount.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *ReferralIssueTx) Visit(visitor Visitor) error {
	return visitor.ReferralIssueTx(tx)
}

// DailyIssueTx issues supply on the daily schedule. It shares the issuance
// contract of IssueTx.
type DailyIssueTx struct {
	Issuer ids.ShortID  `serialize:"true" json:"issuer"`
	To     ids.ShortID  `serialize:"true" json:"to"`
	Amount asset.Amount `serialize:"true" json:"amount"`
}

func (tx *DailyIssueTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.Amount.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *DailyIssueTx) Visit(visitor Visitor) error {
	return visitor.DailyIssueTx(tx)
}

// ReserveTx burns supply out of the payer's balance.
type ReserveTx struct {
	Payer           ids.ShortID  `serialize:"true" json:"payer"`
	AmountToReserve asset.Amount `serialize:"true" json:"amountToReserve"`
}

func (tx *ReserveTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.AmountToReserve.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (tx *ReserveTx) Visit(visitor Visitor) error {
	return visitor.ReserveTx(tx)
}
