// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Allow the ledger to execute custom logic against the underlying operation
// types.
type Visitor interface {
	// Lifecycle:
	CreateAssetTx(*CreateAssetTx) error
	AllowCreateAssetTx(*AllowCreateAssetTx) error
	UpdateAssetTx(*UpdateAssetTx) error
	UpdateAssetV2Tx(*UpdateAssetV2Tx) error
	UpdateBitassetTx(*UpdateBitassetTx) error
	UpdateFeedProducersTx(*UpdateFeedProducersTx) error

	// Supply:
	IssueTx(*IssueTx) error
	BonusTx(*BonusTx) error
	ReferralIssueTx(*ReferralIssueTx) error
	DailyIssueTx(*DailyIssueTx) error
	ReserveTx(*ReserveTx) error

	// Fee pool:
	FundFeePoolTx(*FundFeePoolTx) error
	IndirectFundFeePoolTx(*IndirectFundFeePoolTx) error
	ClaimFeesTx(*ClaimFeesTx) error

	// Feeds and settlement:
	PublishFeedTx(*PublishFeedTx) error
	GlobalSettleTx(*GlobalSettleTx) error
	SettleTx(*SettleTx) error
}
