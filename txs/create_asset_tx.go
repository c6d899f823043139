// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/ids"

	"github.com/luxfi/assetvm/components/asset"
)

const (
	MinSymbolLen = 3
	MaxSymbolLen = 16
)

// AutoFill tags which side of the core exchange rate the creation routine
// fills in with the new asset's identifier.
type AutoFill uint8

const (
	// AutoFillNone leaves the rate exactly as submitted.
	AutoFillNone AutoFill = iota
	// AutoFillBase assigns the new asset as the base side.
	AutoFillBase
	// AutoFillQuote assigns the new asset as the quote side.
	AutoFillQuote
)

var (
	_ UnsignedTx = (*CreateAssetTx)(nil)
	_ UnsignedTx = (*AllowCreateAssetTx)(nil)

	errSymbolLen           = fmt.Errorf("symbol must be %d to %d characters", MinSymbolLen, MaxSymbolLen)
	errIllegalSymbol       = errors.New("symbol may contain only A-Z, 0-9 and single interior dots")
	errInvalidAutoFill     = errors.New("invalid rate auto-fill tag")
	errMissingBitassetOpts = errors.New("prediction market requires bitasset options")
	errMaxSupplyZero       = errors.New("max supply must be positive")
)

// CreateAssetTx registers a new currency. If BitassetOptions is set, the
// asset is market-issued.
type CreateAssetTx struct {
	Issuer    ids.ShortID `serialize:"true" json:"issuer"`
	Symbol    string      `serialize:"true" json:"symbol"`
	Precision uint8       `serialize:"true" json:"precision"`

	Options asset.Options `serialize:"true" json:"options"`
	Params  asset.Params  `serialize:"true" json:"params"`

	BitassetOptions    *asset.BitassetOptions `serialize:"true" json:"bitassetOptions"`
	IsPredictionMarket bool                   `serialize:"true" json:"isPredictionMarket"`

	// Side of the core exchange rate to fill with the new asset's
	// identifier, which is unknown to the caller before creation.
	RateAutoFill AutoFill `serialize:"true" json:"rateAutoFill"`
}

func (tx *CreateAssetTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case len(tx.Symbol) < MinSymbolLen || len(tx.Symbol) > MaxSymbolLen:
		return fmt.Errorf("%w: %q", errSymbolLen, tx.Symbol)
	case tx.Options.MaxSupply == 0:
		return errMaxSupplyZero
	case tx.RateAutoFill > AutoFillQuote:
		return fmt.Errorf("%w: %d", errInvalidAutoFill, tx.RateAutoFill)
	case tx.IsPredictionMarket && tx.BitassetOptions == nil:
		return errMissingBitassetOpts
	}
	if err := verifySymbol(tx.Symbol); err != nil {
		return err
	}
	if err := tx.Options.Verify(); err != nil {
		return err
	}
	if tx.BitassetOptions != nil {
		return tx.BitassetOptions.Verify()
	}
	return nil
}

func (tx *CreateAssetTx) Visit(visitor Visitor) error {
	return visitor.CreateAssetTx(tx)
}

func verifySymbol(symbol string) error {
	if strings.HasPrefix(symbol, ".") || strings.HasSuffix(symbol, ".") ||
		strings.Contains(symbol, "..") {
		return fmt.Errorf("%w: %q", errIllegalSymbol, symbol)
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.':
		default:
			return fmt.Errorf("%w: %q", errIllegalSymbol, symbol)
		}
	}
	if symbol[0] >= '0' && symbol[0] <= '9' {
		return fmt.Errorf("%w: %q", errIllegalSymbol, symbol)
	}
	return nil
}

// AllowCreateAssetTx toggles an account's asset-admin capability. The
// surrounding ledger restricts it to the committee.
type AllowCreateAssetTx struct {
	To    ids.ShortID `serialize:"true" json:"to"`
	Value bool        `serialize:"true" json:"value"`
}

func (tx *AllowCreateAssetTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *AllowCreateAssetTx) Visit(visitor Visitor) error {
	return visitor.AllowCreateAssetTx(tx)
}
