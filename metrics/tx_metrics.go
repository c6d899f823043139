// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/assetvm/txs"
)

const txLabel = "tx"

var (
	_ txs.Visitor = (*txMetrics)(nil)

	txLabels = []string{txLabel}
)

type txMetrics struct {
	numTxs metric.CounterVec
}

func newTxMetrics(registerer metric.Registerer) (*txMetrics, error) {
	m := &txMetrics{
		numTxs: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "txs_accepted",
				Help: "number of transactions accepted",
			},
			txLabels,
		),
	}
	return m, nil
}

func (m *txMetrics) CreateAssetTx(*txs.CreateAssetTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "create_asset",
	}).Inc()
	return nil
}

func (m *txMetrics) AllowCreateAssetTx(*txs.AllowCreateAssetTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "allow_create_asset",
	}).Inc()
	return nil
}

func (m *txMetrics) UpdateAssetTx(*txs.UpdateAssetTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "update_asset",
	}).Inc()
	return nil
}

func (m *txMetrics) UpdateAssetV2Tx(*txs.UpdateAssetV2Tx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "update_asset_v2",
	}).Inc()
	return nil
}

func (m *txMetrics) UpdateBitassetTx(*txs.UpdateBitassetTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "update_bitasset",
	}).Inc()
	return nil
}

func (m *txMetrics) UpdateFeedProducersTx(*txs.UpdateFeedProducersTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "update_feed_producers",
	}).Inc()
	return nil
}

func (m *txMetrics) IssueTx(*txs.IssueTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "issue",
	}).Inc()
	return nil
}

func (m *txMetrics) BonusTx(*txs.BonusTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "bonus",
	}).Inc()
	return nil
}

func (m *txMetrics) ReferralIssueTx(*txs.ReferralIssueTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "referral_issue",
	}).Inc()
	return nil
}

func (m *txMetrics) DailyIssueTx(*txs.DailyIssueTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "daily_issue",
	}).Inc()
	return nil
}

func (m *txMetrics) ReserveTx(*txs.ReserveTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "reserve",
	}).Inc()
	return nil
}

func (m *txMetrics) FundFeePoolTx(*txs.FundFeePoolTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "fund_fee_pool",
	}).Inc()
	return nil
}

func (m *txMetrics) IndirectFundFeePoolTx(*txs.IndirectFundFeePoolTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "indirect_fund_fee_pool",
	}).Inc()
	return nil
}

func (m *txMetrics) ClaimFeesTx(*txs.ClaimFeesTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "claim_fees",
	}).Inc()
	return nil
}

func (m *txMetrics) PublishFeedTx(*txs.PublishFeedTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "publish_feed",
	}).Inc()
	return nil
}

func (m *txMetrics) GlobalSettleTx(*txs.GlobalSettleTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "global_settle",
	}).Inc()
	return nil
}

func (m *txMetrics) SettleTx(*txs.SettleTx) error {
	m.numTxs.With(metric.Labels{
		txLabel: "settle",
	}).Inc()
	return nil
}
