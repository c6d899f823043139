// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/assetvm/txs"
)

var _ Metrics = (*metricsImpl)(nil)

type Metrics interface {
	// Mark that the given operation was committed.
	MarkAccepted(txs.UnsignedTx) error
	// Mark that an operation was rejected during evaluation.
	MarkRejected()
	// Mark that an operation failed during apply.
	MarkConflicted()
}

func New(registerer metric.Registerer) (Metrics, error) {
	txMetrics, err := newTxMetrics(registerer)
	if err != nil {
		return nil, err
	}
	m := &metricsImpl{
		txMetrics: txMetrics,
		numRejected: metric.NewCounter(metric.CounterOpts{
			Name: "txs_rejected",
			Help: "number of transactions rejected during evaluation",
		}),
		numConflicted: metric.NewCounter(metric.CounterOpts{
			Name: "txs_conflicted",
			Help: "number of transactions that failed during apply",
		}),
	}
	return m, nil
}

type metricsImpl struct {
	txMetrics *txMetrics

	numRejected   metric.Counter
	numConflicted metric.Counter
}

func (m *metricsImpl) MarkAccepted(tx txs.UnsignedTx) error {
	return tx.Visit(m.txMetrics)
}

func (m *metricsImpl) MarkRejected() {
	m.numRejected.Inc()
}

func (m *metricsImpl) MarkConflicted() {
	m.numConflicted.Inc()
}
